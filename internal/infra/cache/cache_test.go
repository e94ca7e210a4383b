package cache

import (
	"errors"
	"os"
	"testing"
)

func TestStore_ReadWriteUpdateCheck(t *testing.T) {
	root := t.TempDir()

	s := New(root, false)
	if _, ok, err := s.ReadUpdateCheck(); err != nil || ok {
		t.Fatalf("期望未命中（ok=false, err=nil），实际 ok=%v err=%v", ok, err)
	}

	if err := s.WriteUpdateCheck([]byte(`{"tag":"v1.2.0"}`)); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, ok, err := s.ReadUpdateCheck()
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	if !ok {
		t.Fatalf("期望命中缓存，但 ok=false")
	}
	if string(b) != `{"tag":"v1.2.0"}` {
		t.Fatalf("内容不一致：%q", string(b))
	}
}

func TestStore_ReadOnlyRejectWrite(t *testing.T) {
	root := t.TempDir()

	s := New(root, true)
	if err := s.WriteUpdateCheck([]byte("{}")); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}
	if err := s.WriteReport([]byte("{}")); !errors.Is(err, ErrReadOnly) {
		t.Fatalf("期望 ErrReadOnly，实际：%v", err)
	}

	if _, err := os.Stat(s.UpdateCheckPath()); !os.IsNotExist(err) {
		t.Fatalf("期望文件不存在，但 Stat err=%v", err)
	}
}

func TestStore_UnavailableRoot(t *testing.T) {
	s := New("", false)

	if _, ok, err := s.ReadUpdateCheck(); err != nil || ok {
		t.Fatalf("期望读取静默未命中，实际 ok=%v err=%v", ok, err)
	}
	if err := s.WriteReport([]byte("{}")); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("期望 ErrUnavailable，实际：%v", err)
	}
}

func TestStore_WriteReport(t *testing.T) {
	root := t.TempDir()

	s := New(root, false)
	if err := s.WriteReport([]byte(`{"summary":{}}`)); err != nil {
		t.Fatalf("不期望错误：%v", err)
	}

	b, err := os.ReadFile(s.ReportPath())
	if err != nil {
		t.Fatalf("读取文件失败：%v", err)
	}
	if string(b) != `{"summary":{}}` {
		t.Fatalf("内容不一致：%q", string(b))
	}
}
