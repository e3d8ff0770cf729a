package monitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/avelks/todo-api-be/internal/services"
)

// StatReporter periodically logs service-wide counts so operators can see
// growth without querying the database by hand.
type StatReporter struct {
	userSvc  services.UserServiceProvider
	todoSvc  services.TodoServiceProvider
	schedule cron.Schedule
	done     chan bool
}

// NewStatReporter creates a reporter running on the given cron expression
// (standard five-field specs and @every descriptors are accepted).
func NewStatReporter(userSvc services.UserServiceProvider, todoSvc services.TodoServiceProvider, cronExpr string) (*StatReporter, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &StatReporter{
		userSvc:  userSvc,
		todoSvc:  todoSvc,
		schedule: schedule,
		done:     make(chan bool),
	}, nil
}

// Run starts the reporting loop. It blocks until Stop is called.
func (sr *StatReporter) Run() {
	log.Info().Msg("Starting background stat reporter...")

	// Report once immediately on start
	sr.report()

	for {
		timer := time.NewTimer(time.Until(sr.schedule.Next(time.Now())))
		select {
		case <-sr.done:
			timer.Stop()
			log.Info().Msg("Stopping background stat reporter.")
			return
		case <-timer.C:
			sr.report()
		}
	}
}

// Stop halts the reporting loop.
func (sr *StatReporter) Stop() {
	sr.done <- true
}

func (sr *StatReporter) report() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	users, err := sr.userSvc.CountUsers(ctx)
	if err != nil {
		log.Error().Err(err).Msg("StatReporter: Failed to count users")
		return
	}
	todos, err := sr.todoSvc.CountTodos(ctx)
	if err != nil {
		log.Error().Err(err).Msg("StatReporter: Failed to count todos")
		return
	}

	log.Info().Int("users", users).Int("todos", todos).Msg("Service stats")
}
