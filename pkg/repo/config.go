package repo

type Config struct {
	Log Log `mapstructure:"log" toml:"log"`
}

type Log struct {
	Level            string    `mapstructure:"level" toml:"level"`
	Filename         string    `mapstructure:"filename" toml:"filename"`
	ReportCaller     bool      `mapstructure:"report_caller" toml:"report_caller"`
	EnableColor      bool      `mapstructure:"enable_color" toml:"enable_color"`
	DisableTimestamp bool      `mapstructure:"disable_timestamp" toml:"disable_timestamp"`
	Module           LogModule `mapstructure:"module" toml:"module"`
}

type LogModule struct {
	App            string `mapstructure:"app" toml:"app"`
	Executor       string `mapstructure:"executor" toml:"executor"`
	Storage        string `mapstructure:"storage" toml:"storage"`
	SystemContract string `mapstructure:"system_contract" toml:"system_contract"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: Log{
			Level:       "info",
			Filename:    AppName,
			EnableColor: true,
			Module: LogModule{
				App:            "info",
				Executor:       "info",
				Storage:        "info",
				SystemContract: "info",
			},
		},
	}
}
