// Package authz holds the modify/delete policy shared by every handler.
package authz

// Actor is the authenticated person making a request.
type Actor struct {
	ID      uint64
	Name    string
	Email   string
	IsAdmin bool
}

// CanModify reports whether actor may update or delete a record created by ownerID.
func CanModify(actor Actor, ownerID uint64) bool {
	if actor.ID == 0 {
		return false
	}
	return actor.IsAdmin || actor.ID == ownerID
}

// CanAdminister reports whether actor may manage person records.
func CanAdminister(actor Actor) bool {
	return actor.ID != 0 && actor.IsAdmin
}
