package dispatch

import (
	"context"
	"sync"
)

// Outcome is the result of one task in a WaitAll group.
type Outcome struct {
	Name string
	Err  error
}

// Task is a named unit of work run by WaitAll.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// WaitAll runs all tasks concurrently and waits for every one of them.
// No short-circuiting: a failing task never cancels its siblings, and every
// individual outcome is collected so partial failure stays observable.
// Outcomes are returned in task order.
func WaitAll(ctx context.Context, tasks []Task) []Outcome {
	outcomes := make([]Outcome, len(tasks))

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task Task) {
			defer wg.Done()
			outcomes[i] = Outcome{Name: task.Name, Err: task.Run(ctx)}
		}(i, task)
	}
	wg.Wait()

	return outcomes
}
