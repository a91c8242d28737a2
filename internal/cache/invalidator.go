package cache

import "context"

// Invalidator is called explicitly by mutating service methods, after the row
// is committed and before the call returns. No implicit model hooks: the
// write-then-invalidate sequence stays visible at every call site.
type Invalidator struct {
	objects   *ObjectCache
	relations *RelationCache
}

func NewInvalidator(objects *ObjectCache, relations *RelationCache) *Invalidator {
	return &Invalidator{objects: objects, relations: relations}
}

// OnFriendshipChanged fires on follow and unfollow. Both directions drop:
// the from-user's followings set and the to-user's followers set.
func (i *Invalidator) OnFriendshipChanged(ctx context.Context, fromUserID, toUserID string) {
	i.relations.InvalidateFollowings(ctx, fromUserID)
	i.relations.InvalidateFollowers(ctx, toUserID)
}

// OnUserUpdated fires on any user row mutation.
func (i *Invalidator) OnUserUpdated(ctx context.Context, userID string) {
	i.objects.Invalidate(ctx, KindUser, userID)
}

// OnProfileUpdated fires on any profile row mutation.
func (i *Invalidator) OnProfileUpdated(ctx context.Context, userID string) {
	i.objects.Invalidate(ctx, KindProfile, userID)
}
