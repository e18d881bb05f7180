package user

import "time"

// EffectiveRole computes the privilege level an authorization decision
// should use. Admins keep their role regardless of subscription state;
// everyone else falls back to basic once the subscription end date is
// missing or in the past. A nil end date means "never renewed".
//
// Pure function: read paths call this without touching storage. The
// persisted counterpart is Repository.MaterializeRole.
func EffectiveRole(u *User, today time.Time) Role {
	if u.Role == RoleAdmin {
		return RoleAdmin
	}
	if u.SubscriptionEnd == nil {
		return RoleBasic
	}
	if dateOnly(*u.SubscriptionEnd).Before(dateOnly(today)) {
		return RoleBasic
	}
	return u.Role
}

// dateOnly strips the time-of-day component. Subscription boundaries are
// calendar dates; an end date equal to today is still valid.
func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
