// Package testutil provides thread-safe fakes of the host collaborators.
package testutil

import (
	"sync"

	"github.com/Veraticus/hud-autohide/pkg/interfaces"
	"github.com/Veraticus/hud-autohide/pkg/types"
)

// MockWindowService is a mock implementation of interfaces.WindowService
type MockWindowService struct {
	mu        sync.Mutex
	rect      types.Rect
	ok        bool
	callCount int
}

// NewMockWindowService creates a mock reporting rect as the active window
func NewMockWindowService(rect types.Rect) *MockWindowService {
	return &MockWindowService{rect: rect, ok: true}
}

// ActiveWindow implements the WindowService interface
func (m *MockWindowService) ActiveWindow() (types.Rect, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	return m.rect, m.ok
}

// SetWindow sets the reported active window
func (m *MockWindowService) SetWindow(rect types.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rect = rect
	m.ok = true
}

// SetUnavailable makes ActiveWindow report no window
func (m *MockWindowService) SetUnavailable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ok = false
}

// CallCount returns how many times ActiveWindow was called
func (m *MockWindowService) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockScreenService is a mock implementation of interfaces.ScreenService
type MockScreenService struct {
	mu      sync.Mutex
	screens []types.Rect
}

// NewMockScreenService creates a mock reporting the given screens
func NewMockScreenService(screens ...types.Rect) *MockScreenService {
	return &MockScreenService{screens: screens}
}

// Screens implements the ScreenService interface
func (m *MockScreenService) Screens() []types.Rect {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]types.Rect, len(m.screens))
	copy(result, m.screens)
	return result
}

// SetScreens replaces the reported screens
func (m *MockScreenService) SetScreens(screens ...types.Rect) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.screens = screens
}

// MockScope is a mock implementation of interfaces.ScopeProvider
type MockScope struct {
	mu    sync.Mutex
	tags  []string
	modes []string
}

// NewMockScope creates a mock scope with the given tags and modes
func NewMockScope(tags, modes []string) *MockScope {
	return &MockScope{tags: tags, modes: modes}
}

// Tags implements the ScopeProvider interface
func (m *MockScope) Tags() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.tags...)
}

// Modes implements the ScopeProvider interface
func (m *MockScope) Modes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.modes...)
}

// SetTags replaces the active tags
func (m *MockScope) SetTags(tags ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tags = tags
}

// SetModes replaces the active modes
func (m *MockScope) SetModes(modes ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.modes = modes
}

// MockMicrophone is a mock implementation of interfaces.MicrophoneProvider
type MockMicrophone struct {
	mu   sync.Mutex
	name string
}

// NewMockMicrophone creates a mock reporting name as the active microphone
func NewMockMicrophone(name string) *MockMicrophone {
	return &MockMicrophone{name: name}
}

// ActiveMicrophone implements the MicrophoneProvider interface
func (m *MockMicrophone) ActiveMicrophone() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.name
}

// SetName replaces the active microphone name
func (m *MockMicrophone) SetName(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.name = name
}

// MockMouse is a mock implementation of interfaces.MouseProvider
type MockMouse struct {
	mu        sync.Mutex
	pos       types.Point
	ok        bool
	callCount int
}

// NewMockMouse creates a mock reporting pos as the mouse position
func NewMockMouse(pos types.Point) *MockMouse {
	return &MockMouse{pos: pos, ok: true}
}

// MousePosition implements the MouseProvider interface
func (m *MockMouse) MousePosition() (types.Point, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	return m.pos, m.ok
}

// MoveTo sets the reported mouse position
func (m *MockMouse) MoveTo(x, y float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pos = types.Point{X: x, Y: y}
	m.ok = true
}

// SetUnavailable makes MousePosition report no position
func (m *MockMouse) SetUnavailable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ok = false
}

// CallCount returns how many times MousePosition was called
func (m *MockMouse) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// MockOverlay is a mock implementation of interfaces.OverlayController
type MockOverlay struct {
	mu    sync.Mutex
	calls []bool
}

// NewMockOverlay creates a new mock overlay
func NewMockOverlay() *MockOverlay {
	return &MockOverlay{calls: []bool{}}
}

// SetOverlayVisibility implements the OverlayController interface
func (m *MockOverlay) SetOverlayVisibility(visible bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, visible)
}

// GetCalls returns a copy of all visibility calls in order
func (m *MockOverlay) GetCalls() []bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]bool, len(m.calls))
	copy(result, m.calls)
	return result
}

// CountCalls returns how many calls requested the given visibility
func (m *MockOverlay) CountCalls(visible bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, v := range m.calls {
		if v == visible {
			count++
		}
	}
	return count
}

// Clear resets the recorded calls
func (m *MockOverlay) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = []bool{}
}

// MockPoller is a mock implementation of interfaces.Poller
type MockPoller struct {
	mu           sync.Mutex
	enableCount  int
	disableCount int
	destroyCount int
}

// NewMockPoller creates a new mock poller
func NewMockPoller() *MockPoller {
	return &MockPoller{}
}

// Enable implements the Poller interface
func (m *MockPoller) Enable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.enableCount++
}

// Disable implements the Poller interface
func (m *MockPoller) Disable() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disableCount++
}

// Destroy implements the Poller interface
func (m *MockPoller) Destroy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.destroyCount++
}

// Counts returns the enable, disable and destroy call counts
func (m *MockPoller) Counts() (enabled, disabled, destroyed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enableCount, m.disableCount, m.destroyCount
}

// Ensure mocks implement their interfaces
var (
	_ interfaces.WindowService      = (*MockWindowService)(nil)
	_ interfaces.ScreenService      = (*MockScreenService)(nil)
	_ interfaces.ScopeProvider      = (*MockScope)(nil)
	_ interfaces.MicrophoneProvider = (*MockMicrophone)(nil)
	_ interfaces.MouseProvider      = (*MockMouse)(nil)
	_ interfaces.OverlayController  = (*MockOverlay)(nil)
	_ interfaces.Poller             = (*MockPoller)(nil)
)
