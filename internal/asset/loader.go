package asset

import (
	"context"
	"errors"
	"fmt"
	"path"
	"regexp"

	"go.uber.org/zap"

	"github.com/soar/MotionControllerView/internal/gamepad"
	"github.com/soar/MotionControllerView/internal/scene"
)

const (
	DefaultFolder   = "default"
	LeftFilename    = "left.glb"
	RightFilename   = "right.glb"
	DefaultMaxTries = 1

	RootNodeName = "RootNode"

	// glTF importers may wrap the model in a handedness-conversion node.
	wrapperNodeName = "root"
)

var (
	ErrAcquisition     = errors.New("asset: controller model acquisition failed")
	ErrRootNodeMissing = errors.New("asset: model has no " + RootNodeName + " node")
)

var vendorKeyPattern = regexp.MustCompile(`([0-9a-zA-Z]+-[0-9a-zA-Z]+)$`)

// VendorKey extracts the trailing "<vendor>-<product>" token of a controller id.
func VendorKey(id string) (string, bool) {
	m := vendorKeyPattern.FindString(id)
	return m, m != ""
}

// ModelRef locates one model file: <folder>/<file>.
type ModelRef struct {
	Folder string
	File   string
}

func (r ModelRef) Path() string {
	return path.Join(r.Folder, r.File)
}

// RefFor builds the reference for a controller. The default folder is used
// when forced or when id carries no vendor key.
func RefFor(id string, hand gamepad.Hand, forceDefault bool) ModelRef {
	folder := DefaultFolder
	if !forceDefault {
		if key, ok := VendorKey(id); ok {
			folder = key
		}
	}
	file := RightFilename
	if hand == gamepad.HandLeft {
		file = LeftFilename
	}
	return ModelRef{Folder: folder, File: file}
}

// RetryPolicy bounds acquisition attempts. Attempts numbered MaxTries and
// above use the default model; the attempt numbered MaxTries is the last.
type RetryPolicy struct {
	MaxTries int
}

// Loader acquires controller models with a bounded retry and a fallback to
// the default model.
type Loader struct {
	importer Importer
	policy   RetryPolicy
	log      *zap.Logger
}

func NewLoader(importer Importer, policy RetryPolicy, log *zap.Logger) *Loader {
	if policy.MaxTries < 0 {
		policy.MaxTries = 0
	}
	return &Loader{importer: importer, policy: policy, log: log.Named("asset")}
}

// FindRoot returns the first node named RootNode among nodes and their
// subtrees, or its parent when that parent is the importer's "root" wrapper.
func FindRoot(nodes []*scene.Node) *scene.Node {
	for _, n := range nodes {
		found := n
		if n.Name != RootNodeName {
			found = n.FindDescendant(RootNodeName)
		}
		if found == nil {
			continue
		}
		if p := found.Parent(); p != nil && p.Name == wrapperNodeName {
			return p
		}
		return found
	}
	return nil
}

// Load imports the model for (id, hand) and returns its root node, detached
// from the other imported nodes. After the last failed attempt it returns an
// error wrapping ErrAcquisition and the last attempt's error.
func (l *Loader) Load(ctx context.Context, id string, hand gamepad.Hand) (*scene.Node, error) {
	for attempt := 0; ; attempt++ {
		useDefault := attempt >= l.policy.MaxTries
		ref := RefFor(id, hand, useDefault)

		root, err := l.importOne(ctx, ref)
		if err == nil {
			l.log.Info("controller model loaded",
				zap.String("id", id),
				zap.String("hand", string(hand)),
				zap.String("path", ref.Path()),
				zap.Int("attempt", attempt))
			return root, nil
		}

		l.log.Warn("controller model load failed",
			zap.String("path", ref.Path()),
			zap.Int("attempt", attempt),
			zap.Error(err))

		if useDefault {
			return nil, fmt.Errorf("%w: %s: %w", ErrAcquisition, ref.Path(), err)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrAcquisition, ctxErr)
		}
	}
}

func (l *Loader) importOne(ctx context.Context, ref ModelRef) (*scene.Node, error) {
	nodes, err := l.importer.Import(ctx, ref)
	if err != nil {
		return nil, err
	}
	root := FindRoot(nodes)
	if root == nil {
		return nil, ErrRootNodeMissing
	}
	root.SetParent(nil)
	return root, nil
}
