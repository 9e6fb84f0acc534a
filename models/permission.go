package models

type Permission int

const (
	FORM_READ Permission = iota
	FORM_EDIT
	FORM_DELETE
	SUBMISSION_CREATE
	SUBMISSION_READ
	SYNC_READ
	SYNC_MANAGE
)

var ROLES_PERMISSIONS = map[Role][]Permission{
	NO_ROLE: {},
	VIEWER: {
		FORM_READ,
		SUBMISSION_CREATE,
		SYNC_READ,
	},
	BUILDER: {
		FORM_READ,
		FORM_EDIT,
		SUBMISSION_CREATE,
		SUBMISSION_READ,
		SYNC_READ,
	},
	ADMIN: {
		FORM_READ,
		FORM_EDIT,
		FORM_DELETE,
		SUBMISSION_CREATE,
		SUBMISSION_READ,
		SYNC_READ,
		SYNC_MANAGE,
	},
}

func (p Permission) String() string {
	switch p {
	case FORM_READ:
		return "FORM_READ"
	case FORM_EDIT:
		return "FORM_EDIT"
	case FORM_DELETE:
		return "FORM_DELETE"
	case SUBMISSION_CREATE:
		return "SUBMISSION_CREATE"
	case SUBMISSION_READ:
		return "SUBMISSION_READ"
	case SYNC_READ:
		return "SYNC_READ"
	case SYNC_MANAGE:
		return "SYNC_MANAGE"
	}
	return "UNKNOWN_PERMISSION"
}
