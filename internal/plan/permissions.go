package plan

import (
	"time"

	"gymplan/internal/gym"
	"gymplan/internal/membership"
	"gymplan/internal/user"
)

// ResolvePermissions decides what the actor may do with a plan. mem and g
// are the ownership chain behind a gym-created plan (membership the plan
// was authored through, and that membership's gym); callers pass nil when
// the chain does not apply or a hop is missing.
//
// Side-effect free. Branch order matters: the first matching rule wins
// for edit/delete, the visibility fallback only ever grants view.
func ResolvePermissions(p *TrainingPlan, actor *user.User, mem *membership.Membership, g *gym.Gym, now time.Time) Permissions {
	effective := user.EffectiveRole(actor, now)

	if effective == user.RoleAdmin {
		return Permissions{CanView: true, CanEdit: true, CanDelete: true}
	}

	if actor.Email == p.OwnerEmail && effective.AtLeast(user.RolePremium) {
		return Permissions{CanView: true, CanEdit: true, CanDelete: true}
	}

	if effective == user.RoleGymOwner && p.IsGymCreated && chainGrants(p, actor, mem, g) {
		return Permissions{CanView: true, CanEdit: true, CanDelete: true}
	}

	if p.IsVisible && actor.IsActive && effective.AtLeast(user.RolePremium) {
		return Permissions{CanView: true}
	}

	return Permissions{}
}

// chainGrants checks the plan -> membership -> gym -> owner hops: the
// referenced membership must be active, belong to a gym the actor owns,
// and name the plan's owner as the enrolled member.
func chainGrants(p *TrainingPlan, actor *user.User, mem *membership.Membership, g *gym.Gym) bool {
	if mem == nil || g == nil {
		return false
	}
	if p.GymMembershipID == nil || mem.ID != *p.GymMembershipID {
		return false
	}
	return mem.IsActive && g.ID == mem.GymID && g.OwnerEmail == actor.Email && mem.UserEmail == p.OwnerEmail
}
