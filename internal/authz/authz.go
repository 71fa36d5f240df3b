// Package authz 集中所有角色/归属判断，每个业务操作入口先调用 Authorize。
package authz

import "appointly/internal/domain"

type Action string

const (
	SlotList   Action = "slot:list"
	SlotCreate Action = "slot:create"
	SlotDelete Action = "slot:delete"

	BookingList    Action = "booking:list"
	BookingGet     Action = "booking:get"
	BookingCreate  Action = "booking:create"
	BookingConfirm Action = "booking:confirm"
	BookingCancel  Action = "booking:cancel"

	BlockedDateList   Action = "blocked-date:list"
	BlockedDateCreate Action = "blocked-date:create"
	BlockedDateDelete Action = "blocked-date:delete"

	ProfileRead   Action = "profile:read"
	ProfileUpdate Action = "profile:update"
	UserList      Action = "user:list"
)

// Resource 被操作对象；OwnerID 为空表示无归属（或列表未指定用户）
type Resource struct {
	OwnerID string
}

type Decision struct {
	Allowed         bool
	Unauthenticated bool
	Reason          string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(a domain.Actor, reason string) Decision {
	if !a.Authenticated() {
		return Decision{Unauthenticated: true, Reason: "authentication required"}
	}
	return Decision{Reason: reason}
}

// Err 把拒绝结果转成业务错误
func (d Decision) Err() error {
	switch {
	case d.Allowed:
		return nil
	case d.Unauthenticated:
		return domain.Unauthenticated(d.Reason)
	default:
		return domain.Unauthorized(d.Reason)
	}
}

func Authorize(actor domain.Actor, action Action, res Resource) Decision {
	switch action {
	case SlotList, BlockedDateList:
		return allow()

	case SlotCreate, SlotDelete, BlockedDateCreate, BlockedDateDelete, BookingConfirm, UserList:
		if actor.IsAdmin() {
			return allow()
		}
		return deny(actor, "admin role required")

	case BookingCreate, ProfileRead, ProfileUpdate:
		if actor.Authenticated() {
			return allow()
		}
		return deny(actor, "")

	case BookingList:
		if actor.IsAdmin() {
			return allow()
		}
		if actor.Authenticated() && (res.OwnerID == "" || res.OwnerID == actor.ID) {
			return allow()
		}
		return deny(actor, "cannot list other users' bookings")

	case BookingGet, BookingCancel:
		if actor.IsAdmin() {
			return allow()
		}
		if actor.Authenticated() && res.OwnerID != "" && res.OwnerID == actor.ID {
			return allow()
		}
		return deny(actor, "not the owner of this booking")
	}
	return deny(actor, "unknown action")
}
