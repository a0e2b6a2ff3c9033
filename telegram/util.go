package telegram

import (
	"github.com/sirupsen/logrus"
)

// GetModuleLogger returns the logrus.Entry a module logs through,
// every line carries module=name
func GetModuleLogger(name string) logrus.FieldLogger {
	return logrus.WithField("module", name)
}
