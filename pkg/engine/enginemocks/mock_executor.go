// Package enginemocks provides gomock-generated-style mocks for
// engine.PackageActionExecutor, following the go.uber.org/mock calling
// convention, for the one engine dependency worth mocking in unit tests:
// the executor, the engine's sole external collaborator for actually
// touching packages.
package enginemocks

import (
	"context"
	"reflect"

	"github.com/cruciblepm/crucible/pkg/engine"
	"go.uber.org/mock/gomock"
)

// MockPackageActionExecutor is a mock of the PackageActionExecutor interface.
type MockPackageActionExecutor struct {
	ctrl     *gomock.Controller
	recorder *MockPackageActionExecutorMockRecorder
}

// MockPackageActionExecutorMockRecorder is the mock recorder for MockPackageActionExecutor.
type MockPackageActionExecutorMockRecorder struct {
	mock *MockPackageActionExecutor
}

// NewMockPackageActionExecutor creates a new mock instance.
func NewMockPackageActionExecutor(ctrl *gomock.Controller) *MockPackageActionExecutor {
	mock := &MockPackageActionExecutor{ctrl: ctrl}
	mock.recorder = &MockPackageActionExecutorMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockPackageActionExecutor) EXPECT() *MockPackageActionExecutorMockRecorder {
	return m.recorder
}

// BuildAndInstall mocks base method.
func (m *MockPackageActionExecutor) BuildAndInstall(ctx context.Context, state *engine.TransientState, pkg engine.Package, installMetadata bool) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "BuildAndInstall", ctx, state, pkg, installMetadata)
	ret0, _ := ret[0].(error)
	return ret0
}

// BuildAndInstall indicates an expected call of BuildAndInstall.
func (mr *MockPackageActionExecutorMockRecorder) BuildAndInstall(ctx, state, pkg, installMetadata any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "BuildAndInstall", reflect.TypeOf((*MockPackageActionExecutor)(nil).BuildAndInstall), ctx, state, pkg, installMetadata)
}

// RemoveAllPackages mocks base method.
func (m *MockPackageActionExecutor) RemoveAllPackages(ctx context.Context, state *engine.TransientState, solution *engine.Solution) ([]engine.Package, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "RemoveAllPackages", ctx, state, solution)
	ret0, _ := ret[0].([]engine.Package)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// RemoveAllPackages indicates an expected call of RemoveAllPackages.
func (mr *MockPackageActionExecutorMockRecorder) RemoveAllPackages(ctx, state, solution any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "RemoveAllPackages", reflect.TypeOf((*MockPackageActionExecutor)(nil).RemoveAllPackages), ctx, state, solution)
}

// CleanupPackageArtefacts mocks base method.
func (m *MockPackageActionExecutor) CleanupPackageArtefacts(ctx context.Context, state *engine.TransientState, pkg engine.Package) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "CleanupPackageArtefacts", ctx, state, pkg)
	ret0, _ := ret[0].(error)
	return ret0
}

// CleanupPackageArtefacts indicates an expected call of CleanupPackageArtefacts.
func (mr *MockPackageActionExecutorMockRecorder) CleanupPackageArtefacts(ctx, state, pkg any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "CleanupPackageArtefacts", reflect.TypeOf((*MockPackageActionExecutor)(nil).CleanupPackageArtefacts), ctx, state, pkg)
}

// InstallMetadata mocks base method.
func (m *MockPackageActionExecutor) InstallMetadata(ctx context.Context, state *engine.TransientState, pkg engine.Package) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "InstallMetadata", ctx, state, pkg)
	ret0, _ := ret[0].(error)
	return ret0
}

// InstallMetadata indicates an expected call of InstallMetadata.
func (mr *MockPackageActionExecutorMockRecorder) InstallMetadata(ctx, state, pkg any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "InstallMetadata", reflect.TypeOf((*MockPackageActionExecutor)(nil).InstallMetadata), ctx, state, pkg)
}

// DownloadPackage mocks base method.
func (m *MockPackageActionExecutor) DownloadPackage(ctx context.Context, state *engine.TransientState, pkg engine.Package) (string, bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "DownloadPackage", ctx, state, pkg)
	ret0, _ := ret[0].(string)
	ret1, _ := ret[1].(bool)
	ret2, _ := ret[2].(error)
	return ret0, ret1, ret2
}

// DownloadPackage indicates an expected call of DownloadPackage.
func (mr *MockPackageActionExecutorMockRecorder) DownloadPackage(ctx, state, pkg any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "DownloadPackage", reflect.TypeOf((*MockPackageActionExecutor)(nil).DownloadPackage), ctx, state, pkg)
}

// IsPinned mocks base method.
func (m *MockPackageActionExecutor) IsPinned(pkg engine.Package) bool {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "IsPinned", pkg)
	ret0, _ := ret[0].(bool)
	return ret0
}

// IsPinned indicates an expected call of IsPinned.
func (mr *MockPackageActionExecutorMockRecorder) IsPinned(pkg any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "IsPinned", reflect.TypeOf((*MockPackageActionExecutor)(nil).IsPinned), pkg)
}

// ReverseDependents mocks base method.
func (m *MockPackageActionExecutor) ReverseDependents(pkg engine.Package) []string {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "ReverseDependents", pkg)
	ret0, _ := ret[0].([]string)
	return ret0
}

// ReverseDependents indicates an expected call of ReverseDependents.
func (mr *MockPackageActionExecutorMockRecorder) ReverseDependents(pkg any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "ReverseDependents", reflect.TypeOf((*MockPackageActionExecutor)(nil).ReverseDependents), pkg)
}
