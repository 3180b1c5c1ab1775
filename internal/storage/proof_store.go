package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/google/uuid"
)

// 証憑画像をローカルディスクに保存する。
type ProofStore struct {
	dir string
}

func NewProofStore(dir string) *ProofStore {
	return &ProofStore{dir: dir}
}

// ファイル名に使えない文字を落とす
var unsafeChars = regexp.MustCompile(`[^\w\-.]`)

// Save は証憑をdir配下に保存して、保存パス（dirからの相対）を返す。
// 元のファイル名は残しつつ、衝突しないようuuidを頭に付ける。
func (s *ProofStore) Save(originalName string, src io.Reader) (string, error) {
	cleanName := unsafeChars.ReplaceAllString(filepath.Base(originalName), "_")
	filename := fmt.Sprintf("%s_%s", uuid.NewString(), cleanName)

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create proof dir: %w", err)
	}

	savePath := filepath.Join(s.dir, filename)
	dst, err := os.Create(savePath)
	if err != nil {
		return "", fmt.Errorf("create proof file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		//途中で失敗したら消しておく
		os.Remove(savePath)
		return "", fmt.Errorf("write proof file: %w", err)
	}

	return filename, nil
}

// Open は保存済みの証憑を開く（管理者の確認表示用）。
func (s *ProofStore) Open(storedName string) (io.ReadCloser, error) {
	//パス遡りを防ぐ
	if filepath.Base(storedName) != storedName {
		return nil, fmt.Errorf("invalid proof name")
	}
	return os.Open(filepath.Join(s.dir, storedName))
}
