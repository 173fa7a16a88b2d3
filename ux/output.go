package ux

import (
	"fmt"
	"io"

	"go.uber.org/zap"
)

var Logger *UserLog

// UserLog prints messages meant for the operator and mirrors them to the
// diagnostic log.
type UserLog struct {
	log    *zap.Logger
	writer io.Writer
}

func NewUserLog(log *zap.Logger, userwriter io.Writer) *UserLog {
	Logger = &UserLog{
		log:    log,
		writer: userwriter,
	}
	return Logger
}

// PrintToUser prints msg to the user writer only.
func (ul *UserLog) PrintToUser(msg string, args ...interface{}) {
	_, _ = fmt.Fprintln(ul.writer, fmt.Sprintf(msg, args...))
}

func (ul *UserLog) Info(msg string, fields ...zap.Field) {
	ul.log.Info(msg, fields...)
}

func (ul *UserLog) Debug(msg string, fields ...zap.Field) {
	ul.log.Debug(msg, fields...)
}

// SuccessToUser prints a success banner.
func (ul *UserLog) SuccessToUser(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf("==== %s ====", fmt.Sprintf(msg, args...))
	_, _ = fmt.Fprintln(ul.writer, formattedMsg)
	ul.log.Info(formattedMsg)
}

func (ul *UserLog) GreenCheckmarkToUser(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf("✓ %s", fmt.Sprintf(msg, args...))
	_, _ = fmt.Fprintln(ul.writer, formattedMsg)
	ul.log.Info(formattedMsg)
}

func (ul *UserLog) RedXToUser(msg string, args ...interface{}) {
	formattedMsg := fmt.Sprintf("✗ %s", fmt.Sprintf(msg, args...))
	_, _ = fmt.Fprintln(ul.writer, formattedMsg)
	ul.log.Error(formattedMsg)
}

// PrintError prints err with its details under a generic failure line.
func (ul *UserLog) PrintError(err error) {
	ul.RedXToUser("something went wrong!")
	_, _ = fmt.Fprintln(ul.writer, err)
	ul.log.Error("command failed", zap.Error(err))
}
