// Package notify implements the live event fan-out: an explicit in-process
// registry of subscriber connections grouped into named rooms, with
// fire-and-forget publishing. Delivery is best-effort; the durable trace of
// a submission is the notification row written by the lifecycle engine.
package notify

// Event names pushed over the live channel.
const (
	EventConnected         = "connected"
	EventNewLeaveRequest   = "new_leave_request"
	EventLeaveStatusUpdate = "leave_status_update"
)

// Event is a single fan-out message. Data is serialized as the event payload
// by the transport (JSON for the SSE stream).
type Event struct {
	Name string
	Data any
}

// ManagersRoom is the global room every manager connection joins.
const ManagersRoom = "managers"

// UserRoom names the per-user room that status updates are published to.
func UserRoom(userID string) string { return userID }

// DepartmentManagersRoom names the department-scoped managers room that
// new-request events are published to.
func DepartmentManagersRoom(department string) string {
	return "managers_" + department
}
