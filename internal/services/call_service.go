package services

import (
	"github.com/Dastan2209/Hideout_Messenger/internal/models"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	"github.com/sirupsen/logrus"
)

// CallService drives the call simulation: one system-wide call, signalled
// over websockets, with no media transport behind it.
type CallService struct {
	store *store.Store
	hub   *ws.Hub
}

func NewCallService(st *store.Store, hub *ws.Hub) *CallService {
	return &CallService{store: st, hub: hub}
}

// StartCall activates a call and rings the receiver. The call_log message
// the store emits is pushed into the thread like any other message.
func (s *CallService) StartCall(callerID, receiverID, callType string) (*models.CallState, error) {
	call, logMsg, err := s.store.StartCall(callerID, receiverID, callType)
	if err != nil {
		return nil, err
	}

	s.hub.SendTo(receiverID, map[string]interface{}{
		"type": "call_incoming",
		"call": call,
	})
	payload := map[string]interface{}{
		"type":    "message",
		"message": logMsg,
	}
	s.hub.SendTo(callerID, payload)
	s.hub.SendTo(receiverID, payload)
	return call, nil
}

// AcceptCall answers the ringing call and tells the caller.
func (s *CallService) AcceptCall(userID string) (*models.CallState, error) {
	call, err := s.store.AcceptCall()
	if err != nil {
		return nil, err
	}
	if call.CallerID != userID {
		s.hub.SendTo(call.CallerID, map[string]interface{}{
			"type": "call_accepted",
			"call": call,
		})
	}
	return call, nil
}

// EndCall tears the call down and tells both parties.
func (s *CallService) EndCall(userID string) models.CallState {
	before := s.store.CallState()
	ended := s.store.EndCall()

	if before.IsActive {
		payload := map[string]interface{}{"type": "call_ended"}
		s.hub.SendTo(before.CallerID, payload)
		s.hub.SendTo(before.ReceiverID, payload)
		logrus.WithField("userID", userID).Info("Call torn down")
	}
	return ended
}

// State returns a snapshot of the current call.
func (s *CallService) State() models.CallState {
	return s.store.CallState()
}
