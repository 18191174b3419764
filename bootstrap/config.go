package bootstrap

import (
	"github.com/kbukum/voiceshift/config"
)

// Config is satisfied by any struct embedding config.ServiceConfig with
// `mapstructure:",squash"` that also defines ApplyDefaults and Validate.
type Config interface {
	GetServiceConfig() *config.ServiceConfig
	ApplyDefaults()
	Validate() error
}
