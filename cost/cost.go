// Copyright 2026 Ansatz ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cost provides the public API for the task-polymorphic training
// objective.
//
// Example:
//
//	c, _ := cost.New(cost.TaskRegression)
//	loss, upstream, err := c.Evaluate(outputs, targets)
package cost

import (
	"github.com/ansatz-ml/ansatz/internal/cost"
)

// Task identifies the training objective.
type Task = cost.Task

// Supported task kinds.
const (
	TaskRegression     = cost.TaskRegression
	TaskClassification = cost.TaskClassification
	TaskReinforcement  = cost.TaskReinforcement
)

// Cost evaluates the objective for one task kind.
type Cost = cost.Cost

// New returns a cost for the given task.
func New(task Task) (*Cost, error) {
	return cost.New(task)
}

// ParseTask validates a task name from configuration.
func ParseTask(s string) (Task, error) {
	return cost.ParseTask(s)
}
