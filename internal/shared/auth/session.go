package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mir5/ipadmin/internal/server/models"
)

// Session 会话结构
type Session struct {
	ID        string    `json:"id"`
	UserID    uint      `json:"user_id"`
	Username  string    `json:"username"`
	IsAdmin   bool      `json:"is_admin"`
	LoginTime time.Time `json:"login_time"`
	LastSeen  time.Time `json:"last_seen"`
	IPAddress string    `json:"ip_address"`
	UserAgent string    `json:"user_agent"`
}

// SessionManager 会话管理器
type SessionManager struct {
	sessions     map[string]*Session
	userSessions map[uint][]string // 用户ID -> 会话ID列表
	mutex        sync.RWMutex
	timeout      time.Duration
}

// NewSessionManager 创建会话管理器
func NewSessionManager(timeout time.Duration) *SessionManager {
	return &SessionManager{
		sessions:     make(map[string]*Session),
		userSessions: make(map[uint][]string),
		timeout:      timeout,
	}
}

// CreateSession 创建新会话
func (sm *SessionManager) CreateSession(user *models.User, ipAddress, userAgent string) (*Session, error) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("生成会话ID失败: %w", err)
	}

	now := time.Now()
	session := &Session{
		ID:        sessionID,
		UserID:    user.ID,
		Username:  user.Username,
		IsAdmin:   user.IsAdmin,
		LoginTime: now,
		LastSeen:  now,
		IPAddress: ipAddress,
		UserAgent: userAgent,
	}

	sm.sessions[sessionID] = session
	sm.userSessions[user.ID] = append(sm.userSessions[user.ID], sessionID)

	return session, nil
}

// GetSession 获取会话
func (sm *SessionManager) GetSession(sessionID string) (*Session, error) {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return nil, errors.New("会话不存在")
	}

	if time.Since(session.LastSeen) > sm.timeout {
		return nil, errors.New("会话已过期")
	}

	return session, nil
}

// UpdateSession 更新会话活跃时间
func (sm *SessionManager) UpdateSession(sessionID string) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if session, exists := sm.sessions[sessionID]; exists {
		session.LastSeen = time.Now()
	}
}

// DestroySession 销毁会话
func (sm *SessionManager) DestroySession(sessionID string) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	session, exists := sm.sessions[sessionID]
	if !exists {
		return
	}

	delete(sm.sessions, sessionID)

	// 从用户会话列表中移除
	ids := sm.userSessions[session.UserID]
	for i, id := range ids {
		if id == sessionID {
			sm.userSessions[session.UserID] = append(ids[:i], ids[i+1:]...)
			break
		}
	}
	if len(sm.userSessions[session.UserID]) == 0 {
		delete(sm.userSessions, session.UserID)
	}
}

// DestroyUserSessions 销毁用户的全部会话
func (sm *SessionManager) DestroyUserSessions(userID uint) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	for _, sessionID := range sm.userSessions[userID] {
		delete(sm.sessions, sessionID)
	}
	delete(sm.userSessions, userID)
}

// CleanupExpired 清理过期会话，返回清理数量
func (sm *SessionManager) CleanupExpired() int {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	now := time.Now()
	cleaned := 0
	for sessionID, session := range sm.sessions {
		if now.Sub(session.LastSeen) > sm.timeout {
			delete(sm.sessions, sessionID)

			ids := sm.userSessions[session.UserID]
			for i, id := range ids {
				if id == sessionID {
					sm.userSessions[session.UserID] = append(ids[:i], ids[i+1:]...)
					break
				}
			}
			if len(sm.userSessions[session.UserID]) == 0 {
				delete(sm.userSessions, session.UserID)
			}

			cleaned++
		}
	}

	return cleaned
}

// ActiveCount 当前活跃会话数
func (sm *SessionManager) ActiveCount() int {
	sm.mutex.RLock()
	defer sm.mutex.RUnlock()
	return len(sm.sessions)
}

// generateSessionID 生成会话ID
func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
