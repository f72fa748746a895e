package editorial

import "github.com/deptworks/go-editorial/internal/runtimeconfig"

var (
	ErrLoggingLevelInvalid      = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid     = runtimeconfig.ErrLoggingFormatInvalid
	ErrAutosaveIntervalInvalid  = runtimeconfig.ErrAutosaveIntervalInvalid
	ErrSchedulingRequiresWorker = runtimeconfig.ErrSchedulingRequiresWorker
)

type (
	Config          = runtimeconfig.Config
	Features        = runtimeconfig.Features
	AutosaveConfig  = runtimeconfig.AutosaveConfig
	SchedulerConfig = runtimeconfig.SchedulerConfig
	LoggingConfig   = runtimeconfig.LoggingConfig
	ContentConfig   = runtimeconfig.ContentConfig
	KindConfig      = runtimeconfig.KindConfig
)

func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
