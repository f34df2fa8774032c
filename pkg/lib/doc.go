// Package lib provides a Go SDK to task callbacks programmatically.
//
// The client works directly on an opsdesk database, the same one the opsdesk
// server uses, so tools can issue tasks and read their results without going
// through the HTTP API.
//
// # Quick Start
//
//	client, err := lib.New(ctx, lib.Config{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	task, err := client.IssueTask(ctx, lib.IssueTaskOpts{
//	    Operator:   "alice",
//	    CallbackID: 1,
//	    Command:    "shell",
//	    Params:     "whoami",
//	})
//
// # Test issuances
//
// Set [IssueTaskOpts].Test to run the command transforms without creating the
// task, the result carries the output of every step:
//
//	res, err := client.TestTask(ctx, lib.IssueTaskOpts{...})
//	for _, step := range res.Steps {
//	    fmt.Println(step.Label, step.Value)
//	}
//
// # Agents
//
// [Client.NextTask] and [Client.Respond] act as a callback, mostly useful to
// test payload types without a real agent.
//
// # Error Handling
//
// Errors can be checked with [errors.Is]:
//
//   - [ErrNotFound]: Resource does not exist.
//   - [ErrAlreadyExists]: Resource with the same name already exists.
//   - [ErrNotValid]: Invalid input.
//   - [ErrPermissionDenied]: The operator can't act on the resource.
//   - [ErrUnknownCommand]: The command is not available for the callback.
//
// Issuance failures are [*IssueError] values carrying the command and params
// that were being issued.
package lib
