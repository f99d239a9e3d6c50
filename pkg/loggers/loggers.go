package loggers

import (
	"github.com/sirupsen/logrus"

	"github.com/apocnet/apoc-ledger/pkg/repo"
)

const (
	App            = "app"
	Executor       = "executor"
	Storage        = "storage"
	SystemContract = "system_contract"
)

var w = &LoggerWrapper{
	loggers: map[string]*logrus.Entry{
		App:            NewWithModule(App),
		Executor:       NewWithModule(Executor),
		Storage:        NewWithModule(Storage),
		SystemContract: NewWithModule(SystemContract),
	},
}

type LoggerWrapper struct {
	loggers map[string]*logrus.Entry
}

func NewWithModule(name string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return logger.WithField("module", name)
}

// Initialize applies the repo's log config to the module loggers.
func Initialize(rep *repo.Repo) error {
	config := rep.Config.Log

	m := make(map[string]*logrus.Entry)
	for name, moduleLevel := range map[string]string{
		App:            config.Module.App,
		Executor:       config.Module.Executor,
		Storage:        config.Module.Storage,
		SystemContract: config.Module.SystemContract,
	} {
		entry := NewWithModule(name)
		level := moduleLevel
		if level == "" {
			level = config.Level
		}
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return err
		}
		entry.Logger.SetLevel(parsed)
		entry.Logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:    !config.DisableTimestamp,
			DisableTimestamp: config.DisableTimestamp,
			ForceColors:      config.EnableColor,
		})
		entry.Logger.SetReportCaller(config.ReportCaller)
		m[name] = entry
	}

	w = &LoggerWrapper{loggers: m}
	return nil
}

func Logger(name string) logrus.FieldLogger {
	return w.loggers[name]
}
