// internal/engine/cron.go
package engine

import (
	"fmt"
	"strings"
	"time"

	"github.com/reugn/go-quartz/quartz"
	"github.com/robfig/cron/v3"
)

// Schedule reports when a cron expression fires next
type Schedule interface {
	Next(after time.Time) (time.Time, error)
}

// Presets such as "@daily" are accepted by the rule engine next to
// Quartz expressions. Intervals ("@every 5m") are not.
var presetParser = cron.NewParser(cron.Descriptor)

// ParseCron parses a rule engine cron expression. Expressions use the
// Quartz layout: seconds first, an optional year, '?' for "no specific
// value", day-of-week 1-7 starting on Sunday, and L, W and # modifiers.
func ParseCron(expression string) (Schedule, error) {
	expression = strings.TrimSpace(expression)
	if strings.HasPrefix(expression, "@") {
		if strings.HasPrefix(expression, "@every") {
			return nil, fmt.Errorf("parsing cron expression %q: interval schedules are not supported", expression)
		}
		sched, err := presetParser.Parse(expression)
		if err != nil {
			return nil, fmt.Errorf("parsing cron expression %q: %w", expression, err)
		}
		return presetSchedule{sched}, nil
	}

	trigger, err := quartz.NewCronTrigger(expression)
	if err != nil {
		return nil, fmt.Errorf("parsing cron expression %q: %w", expression, err)
	}
	return quartzSchedule{trigger}, nil
}

type quartzSchedule struct {
	trigger *quartz.CronTrigger
}

func (s quartzSchedule) Next(after time.Time) (time.Time, error) {
	next, err := s.trigger.NextFireTime(after.UnixNano())
	if err != nil {
		return time.Time{}, err
	}
	return time.Unix(0, next).In(after.Location()), nil
}

type presetSchedule struct {
	schedule cron.Schedule
}

func (s presetSchedule) Next(after time.Time) (time.Time, error) {
	next := s.schedule.Next(after)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("no activation after %s", after.Format(time.RFC3339))
	}
	return next, nil
}
