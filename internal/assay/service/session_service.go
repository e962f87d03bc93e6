package service

import (
	"context"
	"sync"

	"github.com/bitfantasy/goldassay/internal/assay/engine"
	"github.com/bitfantasy/goldassay/internal/assay/sse"
	"go.uber.org/zap"
)

// SessionService 按登录会话保存表单编辑会话
type SessionService struct {
	mu       sync.Mutex
	sessions map[string]*engine.Session
	store    engine.FormStore
	sink     engine.ErrorSink
	hub      *sse.Hub
	logger   *zap.Logger
}

// NewSessionService store 同时实现 ErrorSink 时作为错误日志落库
func NewSessionService(store engine.FormStore, hub *sse.Hub, logger *zap.Logger) *SessionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &SessionService{
		sessions: make(map[string]*engine.Session),
		store:    store,
		hub:      hub,
		logger:   logger,
	}
	if sink, ok := store.(engine.ErrorSink); ok {
		svc.sink = sink
	}
	return svc
}

func sessionKey(userID, sid string) string {
	return userID + ":" + sid
}

// Open 新建会话（覆盖同一登录会话下已有的编辑会话）
func (s *SessionService) Open(ctx context.Context, userID, sid string) (*engine.View, error) {
	sess := engine.NewSession(s.store, userID, s.logger)
	if s.sink != nil {
		sess.SetErrorSink(s.sink)
	}
	view, err := sess.Start(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.sessions[sessionKey(userID, sid)] = sess
	s.mu.Unlock()
	return view, nil
}

// Get 取编辑会话；服务重启后 token 仍有效时按需重建
func (s *SessionService) Get(ctx context.Context, userID, sid string) (*engine.Session, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionKey(userID, sid)]
	s.mu.Unlock()
	if ok {
		return sess, nil
	}

	if _, err := s.Open(ctx, userID, sid); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[sessionKey(userID, sid)], nil
}

// Close 登出时丢弃编辑会话
func (s *SessionService) Close(userID, sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionKey(userID, sid))
}

// Count 当前编辑会话数
func (s *SessionService) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Commit 保存表单并推送 form_update
func (s *SessionService) Commit(ctx context.Context, userID, sid string, intent engine.Intent) (*engine.CommitResult, error) {
	sess, err := s.Get(ctx, userID, sid)
	if err != nil {
		return nil, err
	}
	result, err := sess.Commit(ctx, intent)
	if err != nil {
		return nil, err
	}

	if s.hub != nil {
		action := sse.ActionUpdated
		if result.Created {
			action = sse.ActionCreated
		}
		formNumber := result.View.Draft.FormNumber
		if result.Print != nil {
			formNumber = result.Print.FormNumber
		}
		s.hub.PublishFormUpdate(sse.FormUpdate{
			FormID:     result.FormID,
			FormNumber: formNumber,
			UserID:     userID,
			Action:     action,
		})
	}
	return result, nil
}
