package messaging

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/patter-chat/patter/internal/apperr"
	"github.com/patter-chat/patter/internal/models"
)

// CreateGroup makes the caller the admin and always includes them in the
// member set, de-duplicating the requested members.
func (s *Service) CreateGroup(callerID, name string, memberIDs []string) (*GroupView, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.KindValidation, "Name and members array are required")
	}

	members := []string{callerID}
	seen := map[string]bool{callerID: true}
	for _, id := range memberIDs {
		if id != "" && !seen[id] {
			seen[id] = true
			members = append(members, id)
		}
	}

	group := &models.Group{
		ID:        uuid.NewString(),
		Name:      name,
		AdminID:   callerID,
		CreatedAt: time.Now(),
	}
	if err := s.groups.Create(group, members); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "group creation failed", err)
	}
	return s.groupView(group.ID)
}

func (s *Service) MyGroups(callerID string) ([]GroupView, error) {
	groups, err := s.groups.ForUser(callerID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "group query failed", err)
	}
	views := make([]GroupView, 0, len(groups))
	for i := range groups {
		views = append(views, groupViewOf(&groups[i]))
	}
	return views, nil
}

// GetGroup is member-only.
func (s *Service) GetGroup(callerID, groupID string) (*GroupView, error) {
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return nil, classify(err, "Group not found")
	}
	if !group.IsMember(callerID) {
		return nil, apperr.New(apperr.KindForbidden, "Not a member of this group")
	}
	view := groupViewOf(group)
	return &view, nil
}

// AddMembers is admin-only and never produces duplicate member entries.
func (s *Service) AddMembers(callerID, groupID string, memberIDs []string) (*GroupView, error) {
	if len(memberIDs) == 0 {
		return nil, apperr.New(apperr.KindValidation, "Members array is required")
	}
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return nil, classify(err, "Group not found")
	}
	if group.AdminID != callerID {
		return nil, apperr.New(apperr.KindForbidden, "Only admin can add members")
	}

	fresh := make([]string, 0, len(memberIDs))
	for _, id := range memberIDs {
		if id != "" && !group.IsMember(id) {
			fresh = append(fresh, id)
		}
	}
	if err := s.groups.AddMembers(groupID, fresh); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "membership update failed", err)
	}
	return s.groupView(groupID)
}

// RemoveMember is admin-only; the admin can never be removed, which keeps the
// admin-is-a-member invariant.
func (s *Service) RemoveMember(callerID, groupID, memberID string) (*GroupView, error) {
	if memberID == "" {
		return nil, apperr.New(apperr.KindValidation, "Member ID is required")
	}
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return nil, classify(err, "Group not found")
	}
	if group.AdminID != callerID {
		return nil, apperr.New(apperr.KindForbidden, "Only admin can remove members")
	}
	if memberID == group.AdminID {
		return nil, apperr.New(apperr.KindValidation, "Cannot remove admin")
	}

	if err := s.groups.RemoveMember(groupID, memberID); err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "membership update failed", err)
	}
	return s.groupView(groupID)
}

// LeaveGroup rejects the admin: no transfer operation exists, so adminship
// stays put.
func (s *Service) LeaveGroup(callerID, groupID string) error {
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return classify(err, "Group not found")
	}
	if group.AdminID == callerID {
		return apperr.New(apperr.KindValidation, "Admin cannot leave group. Transfer admin first.")
	}
	if err := s.groups.RemoveMember(groupID, callerID); err != nil {
		return apperr.Wrap(apperr.KindInternal, "membership update failed", err)
	}
	return nil
}

func (s *Service) groupView(groupID string) (*GroupView, error) {
	group, err := s.groups.ByID(groupID)
	if err != nil {
		return nil, classify(err, "Group not found")
	}
	view := groupViewOf(group)
	return &view, nil
}
