package asset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/gamepad"
	"github.com/soar/MotionControllerView/internal/scene"
)

type scriptedImporter struct {
	refs    []ModelRef
	results []error
}

func (s *scriptedImporter) Import(_ context.Context, ref ModelRef) ([]*scene.Node, error) {
	i := len(s.refs)
	s.refs = append(s.refs, ref)
	if i < len(s.results) && s.results[i] != nil {
		return nil, s.results[i]
	}
	return []*scene.Node{scene.NewNode("RootNode")}, nil
}

const wmrID = "Spatial Controller (Spatial Interaction Source) 045E-065B"

func TestVendorKey(t *testing.T) {
	key, ok := VendorKey(wmrID)
	assert.True(t, ok)
	assert.Equal(t, "045E-065B", key)

	_, ok = VendorKey("Xbox Controller")
	assert.False(t, ok)
	_, ok = VendorKey("045E-065B trailing")
	assert.False(t, ok)
}

func TestRefFor(t *testing.T) {
	assert.Equal(t, "045E-065B/left.glb", RefFor(wmrID, gamepad.HandLeft, false).Path())
	assert.Equal(t, "045E-065B/right.glb", RefFor(wmrID, gamepad.HandRight, false).Path())
	assert.Equal(t, "default/left.glb", RefFor(wmrID, gamepad.HandLeft, true).Path())
	assert.Equal(t, "default/right.glb", RefFor("no key here", gamepad.HandRight, false).Path())
}

func TestLoadFirstAttempt(t *testing.T) {
	imp := &scriptedImporter{}
	l := NewLoader(imp, RetryPolicy{MaxTries: 1}, zap.NewNop())

	root, err := l.Load(context.Background(), wmrID, gamepad.HandLeft)
	require.NoError(t, err)
	assert.Equal(t, RootNodeName, root.Name)
	assert.Equal(t, []ModelRef{{Folder: "045E-065B", File: LeftFilename}}, imp.refs)
}

func TestLoadRetriesWithDefault(t *testing.T) {
	imp := &scriptedImporter{results: []error{errors.New("404 vendor model")}}
	l := NewLoader(imp, RetryPolicy{MaxTries: 1}, zap.NewNop())

	_, err := l.Load(context.Background(), wmrID, gamepad.HandRight)
	require.NoError(t, err)
	assert.Equal(t, []ModelRef{
		{Folder: "045E-065B", File: RightFilename},
		{Folder: DefaultFolder, File: RightFilename},
	}, imp.refs)
}

func TestLoadFailsWithLastError(t *testing.T) {
	first := errors.New("first failure")
	second := errors.New("second failure")
	imp := &scriptedImporter{results: []error{first, second}}
	l := NewLoader(imp, RetryPolicy{MaxTries: 1}, zap.NewNop())

	_, err := l.Load(context.Background(), wmrID, gamepad.HandRight)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAcquisition)
	assert.ErrorIs(t, err, second)
	assert.NotErrorIs(t, err, first)
	assert.Contains(t, err.Error(), "second failure")
	assert.Len(t, imp.refs, 2)
}

func TestLoadNoRetries(t *testing.T) {
	imp := &scriptedImporter{results: []error{errors.New("boom")}}
	l := NewLoader(imp, RetryPolicy{MaxTries: 0}, zap.NewNop())

	_, err := l.Load(context.Background(), wmrID, gamepad.HandRight)
	assert.ErrorIs(t, err, ErrAcquisition)
	assert.Equal(t, []ModelRef{{Folder: DefaultFolder, File: RightFilename}}, imp.refs)
}

func TestLoadStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	imp := &scriptedImporter{results: []error{context.Canceled}}
	l := NewLoader(imp, RetryPolicy{MaxTries: 3}, zap.NewNop())

	_, err := l.Load(ctx, wmrID, gamepad.HandRight)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, imp.refs, 1)
}

func TestFindRoot(t *testing.T) {
	wrapper := scene.NewNode("root")
	root := scene.NewNode(RootNodeName)
	wrapper.AddChild(root)
	assert.Same(t, wrapper, FindRoot([]*scene.Node{scene.NewNode("light"), wrapper}))

	plain := scene.NewNode("__root__")
	inner := scene.NewNode(RootNodeName)
	plain.AddChild(inner)
	assert.Same(t, inner, FindRoot([]*scene.Node{plain}))

	assert.Nil(t, FindRoot([]*scene.Node{scene.NewNode("Body")}))
}

type rootlessImporter struct{ calls int }

func (r *rootlessImporter) Import(context.Context, ModelRef) ([]*scene.Node, error) {
	r.calls++
	return []*scene.Node{scene.NewNode("Body")}, nil
}

func TestLoadMissingRootIsRetried(t *testing.T) {
	imp := &rootlessImporter{}
	l := NewLoader(imp, RetryPolicy{MaxTries: 1}, zap.NewNop())

	_, err := l.Load(context.Background(), wmrID, gamepad.HandLeft)
	assert.ErrorIs(t, err, ErrRootNodeMissing)
	assert.ErrorIs(t, err, ErrAcquisition)
	assert.Equal(t, 2, imp.calls)
}
