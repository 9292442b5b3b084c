package main

import (
	"sync"

	"github.com/spf13/cobra"
)

// annotationStructuredLog marks commands whose output is machine-read; they
// log through slog instead of printing to the terminal.
const annotationStructuredLog = "structured_log"

type commandExecutionContext struct {
	CommandPath       string
	UsesStructuredLog bool
}

var (
	commandExecutionMu  sync.Mutex
	commandExecutionCur commandExecutionContext
)

func setCommandExecutionContext(ctx commandExecutionContext) {
	commandExecutionMu.Lock()
	defer commandExecutionMu.Unlock()
	commandExecutionCur = ctx
}

func currentCommandExecutionContext() commandExecutionContext {
	commandExecutionMu.Lock()
	defer commandExecutionMu.Unlock()
	return commandExecutionCur
}

func resetCommandExecutionContext() {
	setCommandExecutionContext(commandExecutionContext{})
}

func commandUsesStructuredLogging(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if v, ok := c.Annotations[annotationStructuredLog]; ok {
			return v == "true"
		}
	}
	return false
}
