package rbac

// Default policy for the exam engine. Staff manage the bank and configs and
// audit attempts read-only; students own the attempt lifecycle.
var RolePermissions = map[string][]string{
	"student": {
		"question:take", // receive sanitized question lists inside an attempt
		"attempt:start",
		"attempt:save",
		"attempt:submit",
		"attempt:view-own",
		"proctor:append",
	},
	"staff": {
		"question:view",
		"question:manage",
		"config:view",
		"config:manage",
		"attempt:view-all",
	},
	"admin": {
		"*",
	},
}
