// Package model defines the entities the console manages (customers, products,
// estimates, blog posts), their lifecycle transition tables, and the form
// validation rules applied before anything is sent to the backend.
//
// Each entity type owns an explicit table of allowed (from, action) → to
// transitions. Status-changing UI controls are derived from those tables, so a
// control for a move the table does not allow is never rendered, and a request
// for one is refused with ErrInvalidTransition.
package model
