package group

import "fmt"

// State is the lifecycle state of a group. Every state except Initialized,
// InitializationFailed and Cancelled is a transient phase of convergence:
// the group is Initialized exactly when every inner chat is Initialized.
type State int

const (
	// StateCreatingChats is the owner's initial state: primary channels to
	// the members are still being opened.
	StateCreatingChats State = iota + 1
	// StateJoiningNotConfirmed is an invitee's initial state: the user has
	// not yet accepted or declined the invitation.
	StateJoiningNotConfirmed
	// StateNewMemberJoiningNotConfirmed is the initial state for a member
	// added to an already established group.
	StateNewMemberJoiningNotConfirmed
	// StateWaitingConfirmationFromMembers is the owner waiting for every
	// member's ConfirmJoin.
	StateWaitingConfirmationFromMembers
	// StateWaitingConfirmationFromOwner is an invitee who accepted the join
	// and is waiting for the owner's ConfirmGroupInitialization.
	StateWaitingConfirmationFromOwner
	// StateWaitingSecondaryChatCreation is the mesh-completion phase: the
	// secondary pairwise channels between non-owner members are being opened.
	StateWaitingSecondaryChatCreation
	// StateNewMemberWaitingSecondaryChatCreation is the mesh-completion
	// phase for a newly added member, who initiates all of its channels.
	StateNewMemberWaitingSecondaryChatCreation
	// StateInitialized is the terminal converged state.
	StateInitialized
	// StateInitializationFailed is the terminal failure state.
	StateInitializationFailed
	// StateCancelled is the terminal state after all inner chats were
	// discarded by the provider.
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateCreatingChats:
		return "CreatingChats"
	case StateJoiningNotConfirmed:
		return "JoiningNotConfirmed"
	case StateNewMemberJoiningNotConfirmed:
		return "NewMemberJoiningNotConfirmed"
	case StateWaitingConfirmationFromMembers:
		return "WaitingConfirmationFromMembers"
	case StateWaitingConfirmationFromOwner:
		return "WaitingConfirmationFromOwner"
	case StateWaitingSecondaryChatCreation:
		return "WaitingSecondaryChatCreation"
	case StateNewMemberWaitingSecondaryChatCreation:
		return "NewMemberWaitingSecondaryChatCreation"
	case StateInitialized:
		return "Initialized"
	case StateInitializationFailed:
		return "InitializationFailed"
	case StateCancelled:
		return "Cancelled"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// InnerChatState is the lifecycle state of one member's pairwise channel
// within a group. The NewMember variants track a member joining an already
// established group.
type InnerChatState int

const (
	// InnerChatCreatingChannel: the owner-side primary channel is not open yet.
	InnerChatCreatingChannel InnerChatState = iota + 1
	// InnerChatNeedSendInvitation: the primary channel opened; the creation
	// invitation has not been sent yet.
	InnerChatNeedSendInvitation
	// InnerChatInvitationSent: waiting for the member's ConfirmJoin.
	InnerChatInvitationSent
	// InnerChatNeedSendSecondaryInvitation: a secondary channel opened; the
	// StartSecondaryInnerChat notice has not been sent yet.
	InnerChatNeedSendSecondaryInvitation
	// InnerChatWaitingSecondaryChatsCreation: the member confirmed the join
	// and is completing its side of the mesh.
	InnerChatWaitingSecondaryChatsCreation
	// InnerChatInitialized is the terminal converged state.
	InnerChatInitialized
	// InnerChatCancelled: the provider discarded the channel.
	InnerChatCancelled
	// InnerChatInitializationFailed is the terminal failure state.
	InnerChatInitializationFailed
	// InnerChatNewMemberCreatingChannel: channel to a newly added member (or,
	// on a non-initiating peer, from one) is not open yet.
	InnerChatNewMemberCreatingChannel
	// InnerChatNewMemberNeedSendInvitation: the channel to the added member
	// opened; the new-member creation invitation has not been sent yet.
	InnerChatNewMemberNeedSendInvitation
	// InnerChatNewMemberInvitationSent: waiting for the added member's
	// ConfirmJoin.
	InnerChatNewMemberInvitationSent
	// InnerChatNewMemberWaitingSecondaryChatsCreation: the added member is
	// completing its channels to the existing members.
	InnerChatNewMemberWaitingSecondaryChatsCreation
)

func (s InnerChatState) String() string {
	switch s {
	case InnerChatCreatingChannel:
		return "CreatingChannel"
	case InnerChatNeedSendInvitation:
		return "NeedSendInvitation"
	case InnerChatInvitationSent:
		return "InvitationSent"
	case InnerChatNeedSendSecondaryInvitation:
		return "NeedSendSecondaryInvitation"
	case InnerChatWaitingSecondaryChatsCreation:
		return "WaitingSecondaryChatsCreation"
	case InnerChatInitialized:
		return "Initialized"
	case InnerChatCancelled:
		return "Cancelled"
	case InnerChatInitializationFailed:
		return "InitializationFailed"
	case InnerChatNewMemberCreatingChannel:
		return "NewMemberCreatingChannel"
	case InnerChatNewMemberNeedSendInvitation:
		return "NewMemberNeedSendInvitation"
	case InnerChatNewMemberInvitationSent:
		return "NewMemberInvitationSent"
	case InnerChatNewMemberWaitingSecondaryChatsCreation:
		return "NewMemberWaitingSecondaryChatsCreation"
	default:
		return fmt.Sprintf("InnerChatState(%d)", int(s))
	}
}
