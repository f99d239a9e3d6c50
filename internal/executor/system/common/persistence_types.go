package common

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"

	"github.com/apocnet/apoc-ledger/internal/ledger"
)

// Typed durable records over an account's keyed state. Values are JSON
// encoded behind a one-byte existence tag so a deleted record stays
// distinguishable from a zero value.
const (
	recordAbsent  byte = 0
	recordPresent byte = 1
)

func encodeRecord(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return append([]byte{recordPresent}, data...), nil
}

func decodeRecord[V any](exist bool, data []byte) (bool, V, error) {
	var v V
	if !exist || len(data) == 0 || data[0] == recordAbsent {
		return false, v, nil
	}
	if err := json.Unmarshal(data[1:], &v); err != nil {
		return false, v, err
	}
	return true, v, nil
}

// VMMap is a durable keyed record set with primary-key lookup.
type VMMap[K, V any] struct {
	account     ledger.IAccount
	mapName     string
	keyToString func(key K) string
}

func NewVMMap[K, V any](account ledger.IAccount, mapName string, keyToString func(key K) string) *VMMap[K, V] {
	return &VMMap[K, V]{
		account:     account,
		mapName:     mapName,
		keyToString: keyToString,
	}
}

func (m *VMMap[K, V]) stateKey(key K) []byte {
	return []byte(fmt.Sprintf("%s_%s", m.mapName, m.keyToString(key)))
}

func (m *VMMap[K, V]) Get(k K) (exist bool, v V, err error) {
	return decodeRecord[V](m.account.GetState(m.stateKey(k)))
}

func (m *VMMap[K, V]) MustGet(k K) (V, error) {
	exist, v, err := m.Get(k)
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("system contract[%s] map[%s] key[%s] not exist", m.account.GetAddress(), m.mapName, m.keyToString(k))
	}
	return v, nil
}

func (m *VMMap[K, V]) Has(k K) bool {
	exist, _, err := m.Get(k)
	return err == nil && exist
}

func (m *VMMap[K, V]) Put(k K, v V) error {
	data, err := encodeRecord(v)
	if err != nil {
		return err
	}
	m.account.SetState(m.stateKey(k), data)
	return nil
}

func (m *VMMap[K, V]) Delete(k K) error {
	m.account.SetState(m.stateKey(k), []byte{recordAbsent})
	return nil
}

// VMSlot is a durable singleton record: present or absent, never partial.
type VMSlot[V any] struct {
	account  ledger.IAccount
	slotName string
}

func NewVMSlot[V any](account ledger.IAccount, slotName string) *VMSlot[V] {
	return &VMSlot[V]{
		account:  account,
		slotName: slotName,
	}
}

func (s *VMSlot[V]) stateKey() []byte {
	return []byte(s.slotName)
}

func (s *VMSlot[V]) Get() (exist bool, v V, err error) {
	return decodeRecord[V](s.account.GetState(s.stateKey()))
}

func (s *VMSlot[V]) MustGet() (V, error) {
	exist, v, err := s.Get()
	if err != nil {
		return v, err
	}
	if !exist {
		return v, errors.Errorf("system contract[%s] slot[%s] not exist", s.account.GetAddress(), s.slotName)
	}
	return v, nil
}

func (s *VMSlot[V]) Has() bool {
	exist, _, err := s.Get()
	return err == nil && exist
}

func (s *VMSlot[V]) Put(v V) error {
	data, err := encodeRecord(v)
	if err != nil {
		return err
	}
	s.account.SetState(s.stateKey(), data)
	return nil
}

func (s *VMSlot[V]) Delete() error {
	s.account.SetState(s.stateKey(), []byte{recordAbsent})
	return nil
}
