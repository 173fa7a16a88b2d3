package ux

import (
	"fmt"
	"io"
	"sync"

	"github.com/chelnak/ysmrr"
	"github.com/chelnak/ysmrr/pkg/animations"
	"github.com/chelnak/ysmrr/pkg/colors"
)

// UserSpinner owns one spinner manager for the lifetime of a command.
type UserSpinner struct {
	mutex   sync.Mutex
	manager ysmrr.SpinnerManager
	started bool
}

func NewUserSpinner(w io.Writer) *UserSpinner {
	return &UserSpinner{
		manager: ysmrr.NewSpinnerManager(
			ysmrr.WithWriter(w),
			ysmrr.WithAnimation(animations.Dots),
			ysmrr.WithSpinnerColor(colors.FgHiBlue),
		),
	}
}

// SpinToUser adds a spinner line and starts rendering if needed.
func (us *UserSpinner) SpinToUser(msg string, args ...interface{}) *ysmrr.Spinner {
	us.mutex.Lock()
	defer us.mutex.Unlock()

	sp := us.manager.AddSpinner(fmt.Sprintf(msg, args...))
	if !us.started {
		us.manager.Start()
		us.started = true
	}
	return sp
}

// Stop halts rendering. Safe to call more than once.
func (us *UserSpinner) Stop() {
	us.mutex.Lock()
	defer us.mutex.Unlock()

	if us.started {
		us.manager.Stop()
		us.started = false
	}
}

func SpinComplete(s *ysmrr.Spinner) {
	s.Complete()
}

func SpinFailWithError(s *ysmrr.Spinner, txt string, err error) {
	if txt == "" {
		s.ErrorWithMessage(err.Error())
		return
	}
	s.ErrorWithMessagef("%s: %s", txt, err)
}
