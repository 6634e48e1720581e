// Package execx は git など外部コマンドの呼び出しを差し替え可能にします。
package execx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner は外部コマンドを実行するための最小インターフェースです。
type Runner interface {
	Run(ctx context.Context, dir, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// CommandRunner は exec.CommandContext を利用したデフォルト実装です。
type CommandRunner struct{}

func (CommandRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// DefaultRunner は CommandRunner を返します。
func DefaultRunner() Runner {
	return CommandRunner{}
}

// Line はコマンドを実行し、前後の空白を除いた標準出力を返します。
// 失敗時は標準エラーの内容をエラーメッセージに含めます。
func Line(ctx context.Context, runner Runner, dir, name string, args ...string) (string, error) {
	if runner == nil {
		runner = DefaultRunner()
	}
	stdout, stderr, err := runner.Run(ctx, dir, name, args...)
	if err != nil {
		label := strings.TrimSpace(name + " " + strings.Join(args, " "))
		if msg := strings.TrimSpace(string(stderr)); msg != "" {
			return "", fmt.Errorf("%s: %w: %s", label, err, msg)
		}
		return "", fmt.Errorf("%s: %w", label, err)
	}
	return strings.TrimSpace(string(stdout)), nil
}

// IsNotFound はコマンドが見つからない場合のエラーを判定します。
func IsNotFound(err error) bool {
	var execErr *exec.Error
	return errors.As(err, &execErr)
}
