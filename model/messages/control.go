// Package messages defines the control messages of the encrypted group
// protocol. Control messages travel over already-open pairwise secure
// channels; their byte-level serialization is the host transport's concern.
package messages

import (
	"github.com/groupweave/weave-go/model/group"
)

// Code discriminates control message types in the dispatch table.
type Code uint8

const (
	CodeCreateGroup Code = iota + 1
	CodeCreateGroupForNewMember
	CodeConfirmJoin
	CodeConfirmGroupInitialization
	CodeStartSecondaryInnerChat
	CodeAllSecondaryChatsInitialized
	CodeGroupCreationFailed
	CodeChangeGroupInfo
	CodeDeleteMember
	CodeAddMember
)

func (c Code) String() string {
	switch c {
	case CodeCreateGroup:
		return "CreateGroup"
	case CodeCreateGroupForNewMember:
		return "CreateGroupForNewMember"
	case CodeConfirmJoin:
		return "ConfirmJoin"
	case CodeConfirmGroupInitialization:
		return "ConfirmGroupInitialization"
	case CodeStartSecondaryInnerChat:
		return "StartSecondaryInnerChat"
	case CodeAllSecondaryChatsInitialized:
		return "AllSecondaryChatsInitialized"
	case CodeGroupCreationFailed:
		return "GroupCreationFailed"
	case CodeChangeGroupInfo:
		return "ChangeGroupInfo"
	case CodeDeleteMember:
		return "DeleteMember"
	case CodeAddMember:
		return "AddMember"
	default:
		return "Unknown"
	}
}

// Control is implemented by every protocol control message.
type Control interface {
	Code() Code
}

// CreateGroup invites the receiver into a newly formed group. It is the
// first message on a fresh primary channel, so the receiver derives the
// owner's channel from the channel the message arrived on.
type CreateGroup struct {
	ExternalID  group.ExternalID
	Name        string
	OwnerUserID group.UserID
	MemberIDs   []group.UserID
}

func (CreateGroup) Code() Code { return CodeCreateGroup }

// CreateGroupForNewMember invites the receiver into an already established
// group. Unlike CreateGroup, the receiver is expected to initiate channels
// to every existing member itself.
type CreateGroupForNewMember struct {
	ExternalID  group.ExternalID
	Name        string
	OwnerUserID group.UserID
	MemberIDs   []group.UserID
}

func (CreateGroupForNewMember) Code() Code { return CodeCreateGroupForNewMember }

// ConfirmJoin tells the owner that the sender accepted the invitation.
type ConfirmJoin struct{}

func (ConfirmJoin) Code() Code { return CodeConfirmJoin }

// ConfirmGroupInitialization tells a member that every invitee confirmed and
// the secondary mesh completion may begin.
type ConfirmGroupInitialization struct{}

func (ConfirmGroupInitialization) Code() Code { return CodeConfirmGroupInitialization }

// StartSecondaryInnerChat is the first message on a freshly opened secondary
// channel, binding it to the group identified by ExternalID.
type StartSecondaryInnerChat struct {
	ExternalID group.ExternalID
}

func (StartSecondaryInnerChat) Code() Code { return CodeStartSecondaryInnerChat }

// AllSecondaryChatsInitialized tells the owner that the sender's side of the
// mesh is complete.
type AllSecondaryChatsInitialized struct{}

func (AllSecondaryChatsInitialized) Code() Code { return CodeAllSecondaryChatsInitialized }

// GroupCreationFailed marks the group's formation as irrecoverably failed.
type GroupCreationFailed struct{}

func (GroupCreationFailed) Code() Code { return CodeGroupCreationFailed }

// Delta flags for ChangeGroupInfo.
const (
	FlagName   = 0x1
	FlagAvatar = 0x2
)

// ChangeGroupInfo carries owner-initiated name and avatar changes. Only the
// fields whose flag is set are applied; an avatar delta with empty bytes
// clears the avatar.
type ChangeGroupInfo struct {
	Flags  int
	Name   string
	Avatar []byte
}

func (ChangeGroupInfo) Code() Code { return CodeChangeGroupInfo }

// DeleteMember removes a member from the group. A receiver that is itself
// the target leaves the group entirely.
type DeleteMember struct {
	UserID group.UserID
}

func (DeleteMember) Code() Code { return CodeDeleteMember }

// AddMember informs existing members that the owner added a new member. The
// new member itself receives CreateGroupForNewMember instead.
type AddMember struct {
	UserID group.UserID
}

func (AddMember) Code() Code { return CodeAddMember }
