//go:generate go run go.uber.org/mock/mockgen -source=realtime_service.go -destination=../mocks/mock_realtime_service.go -package=mocks
package services

import (
	"devhub/contract"
	"devhub/domain"
	"devhub/domain/event"
	"devhub/runtime"
)

type IRealtimeService interface {
	Join(id domain.ConnectionID, code domain.SessionCode, token string, sink contract.EventSink)
	EditorChange(id domain.ConnectionID, change event.EditorChange)
	PostChat(id domain.ConnectionID, content string)
	Leave(id domain.ConnectionID)
}

// RealtimeService is the seam between the transport layer and the
// broadcast engine, so transports can be tested against a mock.
type RealtimeService struct {
	engine *runtime.Broadcaster
}

func NewRealtimeService(engine *runtime.Broadcaster) *RealtimeService {
	return &RealtimeService{engine: engine}
}

func (s *RealtimeService) Join(id domain.ConnectionID, code domain.SessionCode, token string, sink contract.EventSink) {
	s.engine.Join(id, code, token, sink)
}

func (s *RealtimeService) EditorChange(id domain.ConnectionID, change event.EditorChange) {
	s.engine.EditorChange(id, change)
}

func (s *RealtimeService) PostChat(id domain.ConnectionID, content string) {
	s.engine.PostChat(id, content)
}

func (s *RealtimeService) Leave(id domain.ConnectionID) {
	s.engine.Leave(id)
}
