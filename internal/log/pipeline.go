package log

import (
	"github.com/sirupsen/logrus"

	"github.com/git-pkgs/deprecier/internal/core"
)

// pipelineLogger adapts an entry to core.Logger. Details land in a
// "details" field so JSON output keeps them machine readable.
type pipelineLogger struct {
	entry *logrus.Entry
}

// Pipeline returns a core.Logger writing info lines to the current singleton.
func Pipeline(fields logrus.Fields) core.Logger {
	return &pipelineLogger{entry: log.WithFields(fields)}
}

func (p *pipelineLogger) Log(message string, details ...any) {
	entry := p.entry
	switch len(details) {
	case 0:
	case 1:
		entry = entry.WithField("details", details[0])
	default:
		entry = entry.WithField("details", details)
	}
	entry.Info(message)
}
