//go:build !nogpu

package gpu

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func TestCommandListReplayOrder(t *testing.T) {
	rec := NewCommandRecorder(640, 480)
	rec.SetPipeline(nil)
	rec.SetBindGroup(1, nil, nil)
	rec.SetVertexBuffer(0, nil, 32)
	rec.SetIndexBuffer(nil, gputypes.IndexFormatUint16, 8)
	rec.SetScissorRect(1, 2, 3, 4)
	rec.Draw(3, 1, 0, 0)
	rec.DrawIndexed(6, 2, 1, -4, 0)
	list := rec.Finish()

	if list.Len() != 7 {
		t.Errorf("Len() = %d, want 7", list.Len())
	}
	if w, h := list.Size(); w != 640 || h != 480 {
		t.Errorf("Size() = %dx%d, want 640x480", w, h)
	}

	pass := &recordingPass{}
	list.Execute(pass)
	assertCalls(t, pass.calls, []string{
		"pipeline",
		"bindgroup 1",
		"vertex 0 32",
		"index 8",
		"scissor 1 2 3 4",
		"draw 3 1 0 0",
		"drawindexed 6 2 1 -4 0",
	})

	// Replaying does not consume the list.
	again := &recordingPass{}
	list.Execute(again)
	if len(again.calls) != 7 {
		t.Errorf("second replay recorded %d calls, want 7", len(again.calls))
	}
}

func TestCommandListNil(t *testing.T) {
	var list *CommandList
	if list.Len() != 0 {
		t.Errorf("nil Len() = %d", list.Len())
	}
	pass := &recordingPass{}
	list.Execute(pass)
	if len(pass.calls) != 0 {
		t.Errorf("nil list recorded %v", pass.calls)
	}
}

func TestCommandRecorderCopiesOffsets(t *testing.T) {
	offsets := []uint32{256}
	rec := NewCommandRecorder(1, 1)
	rec.SetBindGroup(0, nil, offsets)
	offsets[0] = 0
	list := rec.Finish()
	if got := list.cmds[0].offsets[0]; got != 256 {
		t.Errorf("recorded offset = %d, want 256", got)
	}
}

func TestOverlayFunc(t *testing.T) {
	var gotW, gotH uint32
	var p OverlayProvider = OverlayFunc(func(w, h uint32) (*CommandList, error) {
		gotW, gotH = w, h
		return NewCommandRecorder(w, h).Finish(), nil
	})
	list, err := p.Overlay(800, 600)
	if err != nil {
		t.Fatalf("Overlay failed: %v", err)
	}
	if gotW != 800 || gotH != 600 {
		t.Errorf("provider called with %dx%d", gotW, gotH)
	}
	if list.Len() != 0 {
		t.Errorf("Len() = %d, want 0", list.Len())
	}

	errOverlay := errors.New("overlay failed")
	_, err = OverlayFunc(func(uint32, uint32) (*CommandList, error) { return nil, errOverlay }).Overlay(1, 1)
	if !errors.Is(err, errOverlay) {
		t.Errorf("error = %v, want %v", err, errOverlay)
	}
}
