// Package session 面向嵌入式客户端（view 包绑定器的宿主），
// 以显式注入的值替代全局可变的认证状态。
package session

import (
	"sync"

	"github.com/kitokazu/gymunyfu/internal/model"
)

// Session 表示当前已认证的会话
type Session struct {
	UserID string
	User   *model.User
}

// Manager 持有显式注入的当前会话值，替代全局可变的认证状态。
// 登录通知时设置，登出通知时清空，变更会推送给所有监听者。
type Manager struct {
	mu        sync.RWMutex
	current   *Session
	listeners map[int]func(*Session)
	nextID    int
}

func NewManager() *Manager {
	return &Manager{
		listeners: make(map[int]func(*Session)),
	}
}

// Current 返回当前会话，未登录时为 nil
func (m *Manager) Current() *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// SignIn 设置当前会话并通知监听者
func (m *Manager) SignIn(s *Session) {
	m.mu.Lock()
	m.current = s
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(s)
	}
}

// SignOut 清空当前会话并通知监听者
func (m *Manager) SignOut() {
	m.mu.Lock()
	m.current = nil
	listeners := m.snapshotListeners()
	m.mu.Unlock()

	for _, fn := range listeners {
		fn(nil)
	}
}

// OnChange 注册会话变更监听，返回注销函数
func (m *Manager) OnChange(fn func(*Session)) func() {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) snapshotListeners() []func(*Session) {
	out := make([]func(*Session), 0, len(m.listeners))
	for _, fn := range m.listeners {
		out = append(out, fn)
	}
	return out
}
