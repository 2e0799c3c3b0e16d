package groups

import (
	"errors"
	"fmt"

	"github.com/groupweave/weave-go/model/group"
	"github.com/groupweave/weave-go/model/messages"
)

// inbound carries one received control message through its dispatch entry.
// The guard locates the addressed group and sender chat and stores them here
// for the apply step.
type inbound struct {
	channel group.ChannelID
	msg     messages.Control
	group   *group.EncryptedGroup
	sender  *group.InnerChat
}

// dispatchEntry pairs a message type's precondition with its state
// transition. A guard error drops the message; apply only ever runs on
// state the guard has validated, which makes redelivery and reordering
// harmless.
type dispatchEntry struct {
	guard func(e *Engine, in *inbound) error
	apply func(e *Engine, in *inbound) error
}

var dispatchTable = map[messages.Code]dispatchEntry{
	messages.CodeCreateGroup:                  {guardCreation, applyCreateGroup},
	messages.CodeCreateGroupForNewMember:      {guardCreation, applyCreateGroupForNewMember},
	messages.CodeConfirmJoin:                  {guardConfirmJoin, applyConfirmJoin},
	messages.CodeConfirmGroupInitialization:   {guardConfirmInitialization, applyConfirmInitialization},
	messages.CodeStartSecondaryInnerChat:      {guardStartSecondary, applyStartSecondary},
	messages.CodeAllSecondaryChatsInitialized: {guardAllSecondary, applyAllSecondary},
	messages.CodeGroupCreationFailed:          {guardCreationFailed, applyCreationFailed},
	messages.CodeChangeGroupInfo:              {guardChangeInfo, applyChangeInfo},
	messages.CodeDeleteMember:                 {guardDeleteMember, applyDeleteMember},
	messages.CodeAddMember:                    {guardAddMember, applyAddMember},
}

// OnControlMessageReceived dispatches one inbound control message. Messages
// whose precondition does not hold against current local state are dropped
// and logged, never queued; the protocol's guarded transitions tolerate
// duplicates, reordering and loss.
func (e *Engine) OnControlMessageReceived(channel group.ChannelID, msg messages.Control) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lg := e.log.With().
		Int32("channel", int32(channel)).
		Str("message", msg.Code().String()).
		Logger()

	entry, known := dispatchTable[msg.Code()]
	if !known {
		lg.Warn().Msg("unknown control message")
		e.metrics.ControlMessageDropped(msg.Code().String())
		return
	}

	in := &inbound{channel: channel, msg: msg}
	err := entry.guard(e, in)
	if err != nil {
		lg.Debug().Err(err).Msg("dropping control message")
		e.metrics.ControlMessageDropped(msg.Code().String())
		return
	}

	err = entry.apply(e, in)
	if err != nil {
		lg.Error().Err(err).Msg("could not apply control message")
		return
	}
	e.metrics.ControlMessageHandled(msg.Code().String())
}

// locate resolves the group and sender inner chat addressed by the arrival
// channel. Most guards start here; creation and secondary-start messages
// arrive on channels not yet bound to a group and resolve differently.
func (in *inbound) locate(e *Engine) error {
	in.group = e.groupByChannel(in.channel)
	if in.group == nil {
		return fmt.Errorf("channel not bound to any group")
	}
	in.sender = in.group.InnerChatByChannel(in.channel)
	if in.sender == nil {
		return fmt.Errorf("channel not bound to any inner chat")
	}
	return nil
}

// fromOwner requires the located sender to be the group owner.
func (in *inbound) fromOwner() error {
	if in.sender.UserID != in.group.OwnerUserID {
		return fmt.Errorf("message reserved to owner, got it from user %d", in.sender.UserID)
	}
	return nil
}

func guardCreation(e *Engine, in *inbound) error {
	var externalID group.ExternalID
	var memberIDs []group.UserID
	switch m := in.msg.(type) {
	case messages.CreateGroup:
		externalID, memberIDs = m.ExternalID, m.MemberIDs
	case messages.CreateGroupForNewMember:
		externalID, memberIDs = m.ExternalID, m.MemberIDs
	default:
		return fmt.Errorf("unexpected payload %T", in.msg)
	}
	if _, exists := e.byExternal[externalID]; exists {
		return fmt.Errorf("group %d already known", externalID)
	}
	if len(memberIDs) == 0 {
		return errors.New("invitation carries no members")
	}
	if len(memberIDs)+1 > group.MaxMembers {
		return ErrTooManyMembers
	}
	return nil
}

// materializeInvitation builds the local copy of an invited-to group. The
// arrival channel doubles as the owner's inner chat; chats to the remaining
// members start without channels and are completed during mesh completion.
func (e *Engine) materializeInvitation(
	in *inbound,
	externalID group.ExternalID,
	name string,
	ownerUserID group.UserID,
	memberIDs []group.UserID,
	state group.State,
) error {

	eg := &group.EncryptedGroup{
		ExternalID:  externalID,
		InternalID:  e.freshInternalID(),
		Name:        name,
		OwnerUserID: ownerUserID,
		State:       state,
	}
	for _, userID := range memberIDs {
		if userID == e.me.UserID() || userID == ownerUserID {
			continue
		}
		eg.AddInnerChat(group.NewInnerChat(userID))
	}
	owner := group.NewInnerChat(ownerUserID)
	owner.SetChannel(in.channel)
	owner.State = group.InnerChatInitialized
	eg.AddInnerChat(owner)

	err := e.groups.Store(eg)
	if err != nil {
		return fmt.Errorf("could not persist invited group: %w", err)
	}
	e.register(eg)
	e.events.JoinRequested(eg)

	e.log.Info().
		Int32("group", int32(eg.InternalID)).
		Int64("owner", int64(ownerUserID)).
		Str("state", state.String()).
		Msg("group invitation received")

	return nil
}

func applyCreateGroup(e *Engine, in *inbound) error {
	m := in.msg.(messages.CreateGroup)
	return e.materializeInvitation(in, m.ExternalID, m.Name, m.OwnerUserID, m.MemberIDs,
		group.StateJoiningNotConfirmed)
}

func applyCreateGroupForNewMember(e *Engine, in *inbound) error {
	m := in.msg.(messages.CreateGroupForNewMember)
	return e.materializeInvitation(in, m.ExternalID, m.Name, m.OwnerUserID, m.MemberIDs,
		group.StateNewMemberJoiningNotConfirmed)
}

func guardConfirmJoin(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	formation := in.group.IsInState(group.StateCreatingChats, group.StateWaitingConfirmationFromMembers) &&
		in.sender.IsInState(group.InnerChatInvitationSent)
	newMember := in.group.IsInState(group.StateInitialized) &&
		in.sender.IsInState(group.InnerChatNewMemberInvitationSent)
	if !formation && !newMember {
		return fmt.Errorf("unexpected join confirmation in group state %s, chat state %s",
			in.group.State, in.sender.State)
	}
	return nil
}

func applyConfirmJoin(e *Engine, in *inbound) error {

	// an added member joining an established group converges immediately,
	// the mesh completion is on the new member's side
	if in.group.IsInState(group.StateInitialized) {
		in.sender.State = group.InnerChatInitialized
		err := e.saveInnerChat(in.group, in.sender)
		if err != nil {
			return err
		}
		e.events.GroupUpdated(in.group)
		return nil
	}

	in.sender.State = group.InnerChatWaitingSecondaryChatsCreation
	err := e.saveInnerChat(in.group, in.sender)
	if err != nil {
		return err
	}

	if in.group.AllInnerChatsInState(group.InnerChatWaitingSecondaryChatsCreation) {
		err = e.setGroupState(in.group, group.StateWaitingSecondaryChatCreation)
		if err != nil {
			return err
		}
		e.sendToMembers(in.group, messages.ConfirmGroupInitialization{})
	}
	e.events.GroupUpdated(in.group)

	return nil
}

func guardConfirmInitialization(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	err = in.fromOwner()
	if err != nil {
		return err
	}
	if !in.group.IsInState(group.StateWaitingConfirmationFromOwner) {
		return fmt.Errorf("unexpected initialization confirmation in state %s", in.group.State)
	}
	return nil
}

func applyConfirmInitialization(e *Engine, in *inbound) error {
	err := e.setGroupState(in.group, group.StateWaitingSecondaryChatCreation)
	if err != nil {
		return err
	}
	e.events.GroupUpdated(in.group)
	return nil
}

func guardStartSecondary(e *Engine, in *inbound) error {
	m := in.msg.(messages.StartSecondaryInnerChat)

	internalID, exists := e.byExternal[m.ExternalID]
	if !exists {
		return fmt.Errorf("no local group for external id %d", m.ExternalID)
	}
	in.group = e.byInternal[internalID]

	peer, err := e.channels.PeerUser(in.channel)
	if err != nil {
		return fmt.Errorf("could not identify channel peer: %w", err)
	}
	in.sender = in.group.InnerChatByUserID(peer)
	if in.sender == nil {
		return fmt.Errorf("user %d is not a member", peer)
	}
	if in.sender.HasChannel() {
		return fmt.Errorf("inner chat for user %d already has a channel", peer)
	}

	meshing := in.group.IsInState(group.StateWaitingSecondaryChatCreation) &&
		in.sender.IsInState(group.InnerChatCreatingChannel)
	fromNewMember := in.group.IsInState(group.StateInitialized) &&
		in.sender.IsInState(group.InnerChatNewMemberCreatingChannel)
	if !meshing && !fromNewMember {
		return fmt.Errorf("unexpected secondary channel in group state %s, chat state %s",
			in.group.State, in.sender.State)
	}
	return nil
}

func applyStartSecondary(e *Engine, in *inbound) error {
	in.sender.SetChannel(in.channel)
	in.sender.State = group.InnerChatInitialized
	err := e.saveInnerChat(in.group, in.sender)
	if err != nil {
		return err
	}
	err = e.checkConvergence(in.group)
	if err != nil {
		return err
	}
	e.events.GroupUpdated(in.group)
	return nil
}

func guardAllSecondary(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	if !in.sender.IsInState(group.InnerChatWaitingSecondaryChatsCreation) {
		return fmt.Errorf("unexpected mesh completion report in chat state %s", in.sender.State)
	}
	return nil
}

func applyAllSecondary(e *Engine, in *inbound) error {
	in.sender.State = group.InnerChatInitialized
	err := e.saveInnerChat(in.group, in.sender)
	if err != nil {
		return err
	}
	err = e.checkConvergence(in.group)
	if err != nil {
		return err
	}
	e.events.GroupUpdated(in.group)
	return nil
}

func guardCreationFailed(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	if in.group.IsInState(group.StateInitializationFailed) {
		return errors.New("group already failed")
	}
	// before convergence any member may report failure to the owner, after
	// convergence only the owner can fail the group
	if in.group.IsInState(group.StateInitialized) {
		return in.fromOwner()
	}
	return nil
}

func applyCreationFailed(e *Engine, in *inbound) error {
	return e.failGroup(in.group)
}

func guardChangeInfo(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	err = in.fromOwner()
	if err != nil {
		return err
	}
	m := in.msg.(messages.ChangeGroupInfo)
	if m.Flags&messages.FlagAvatar != 0 && len(m.Avatar) > group.MaxAvatarBytes {
		return ErrAvatarTooLarge
	}
	return nil
}

func applyChangeInfo(e *Engine, in *inbound) error {
	m := in.msg.(messages.ChangeGroupInfo)
	if m.Flags&messages.FlagName != 0 {
		in.group.Name = m.Name
	}
	if m.Flags&messages.FlagAvatar != 0 {
		in.group.Avatar = m.Avatar
	}
	err := e.groups.Update(in.group)
	if err != nil {
		return fmt.Errorf("could not persist group info: %w", err)
	}
	e.events.GroupUpdated(in.group)
	return nil
}

func guardDeleteMember(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	err = in.fromOwner()
	if err != nil {
		return err
	}
	m := in.msg.(messages.DeleteMember)
	if m.UserID != e.me.UserID() && in.group.InnerChatByUserID(m.UserID) == nil {
		return ErrUnknownMember
	}
	return nil
}

func applyDeleteMember(e *Engine, in *inbound) error {
	m := in.msg.(messages.DeleteMember)

	// being the target means leaving the group entirely
	if m.UserID == e.me.UserID() {
		e.log.Info().Int32("group", int32(in.group.InternalID)).Msg("removed from group")
		return e.removeGroup(in.group, false)
	}

	err := e.removeMember(in.group, m.UserID)
	if err != nil {
		return err
	}
	e.events.GroupUpdated(in.group)
	return nil
}

func guardAddMember(e *Engine, in *inbound) error {
	err := in.locate(e)
	if err != nil {
		return err
	}
	err = in.fromOwner()
	if err != nil {
		return err
	}
	m := in.msg.(messages.AddMember)
	if m.UserID == e.me.UserID() {
		return errors.New("local account announced as new member")
	}
	if in.group.InnerChatByUserID(m.UserID) != nil {
		return ErrAlreadyMember
	}
	if len(in.group.InnerChats)+2 > group.MaxMembers {
		return ErrTooManyMembers
	}
	return nil
}

// applyAddMember records the announced member with an unopened channel. The
// new member initiates the channel itself; the inner chat converges when its
// StartSecondaryInnerChat arrives.
func applyAddMember(e *Engine, in *inbound) error {
	m := in.msg.(messages.AddMember)

	chat := group.NewInnerChat(m.UserID)
	chat.State = group.InnerChatNewMemberCreatingChannel
	in.group.AddInnerChat(chat)

	// the chat row must exist before the member order references it
	err := e.saveInnerChat(in.group, chat)
	if err != nil {
		return err
	}
	err = e.groups.Update(in.group)
	if err != nil {
		return fmt.Errorf("could not persist member order: %w", err)
	}
	e.events.GroupUpdated(in.group)
	return nil
}
