package kit

import (
	"context"
	"fmt"
)

// Stage orders boot tasks.
type Stage int

const (
	// StageLight tasks run first, e.g. SDK initialization that must not block.
	StageLight Stage = iota

	// StageHeavy tasks run once every light task succeeded.
	StageHeavy
)

// String returns "light" or "heavy".
func (s Stage) String() string {
	switch s {
	case StageLight:
		return "light"
	case StageHeavy:
		return "heavy"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// BootTask is one unit of module start-up work.
type BootTask struct {
	Name  string
	Stage Stage
	Run   func(ctx context.Context) error
}

// Light returns a StageLight task.
func Light(name string, run func(ctx context.Context) error) BootTask {
	return BootTask{Name: name, Stage: StageLight, Run: run}
}

// Heavy returns a StageHeavy task.
func Heavy(name string, run func(ctx context.Context) error) BootTask {
	return BootTask{Name: name, Stage: StageHeavy, Run: run}
}

// Boot runs the light tasks of every module, in module order, then the heavy
// ones. It stops at the first failure and returns it as *BootError.
// Tasks with a nil Run are skipped.
func Boot(ctx context.Context, modules ...Module) error {
	for _, stage := range []Stage{StageLight, StageHeavy} {
		for _, m := range modules {
			for _, task := range m.BootTasks() {
				if task.Stage != stage || task.Run == nil {
					continue
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := task.Run(ctx); err != nil {
					return &BootError{Task: task.Name, Stage: stage, Err: err}
				}
			}
		}
	}
	return nil
}
