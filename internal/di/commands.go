package di

import (
	command "github.com/goliatone/go-command"
)

// CommandRegistry is the minimal contract hosts implement to collect command
// handlers during registration.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher registers handlers with a message dispatcher and returns
// subscriptions callers can release on shutdown.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription releases a dispatcher registration.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar schedules a handler using the host's cron runner.
type CronRegistrar func(command.HandlerConfig, any) error
