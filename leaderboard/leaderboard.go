package leaderboard

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"

	"pathmania/logger"
)

// ErrMalformed 分数文件中有无法解析的行
var ErrMalformed = errors.New("leaderboard: malformed record")

// Record 一条分数记录：难度代码|用户名|分数
type Record struct {
	Difficulty byte    `json:"difficulty"`
	Username   string  `json:"username"`
	Score      float64 `json:"score"`
}

func (r Record) line() string {
	return fmt.Sprintf("%c|%s|%s\n", r.Difficulty, Sanitize(r.Username),
		strconv.FormatFloat(r.Score, 'f', 2, 64))
}

// Sanitize 去掉分隔符与换行，空名字记为 anonymous
func Sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '|', '\n', '\r':
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" {
		return "anonymous"
	}
	return name
}

// Board 追加写入的本地分数文件
type Board struct {
	mu   sync.Mutex
	path string
}

// Open 打开（必要时创建）分数文件
func Open(path string) (*Board, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: open %s: %w", path, err)
	}
	_ = f.Close()
	return &Board{path: path}, nil
}

// Path 日志文件路径
func (b *Board) Path() string { return b.path }

// Append 追加一条记录
func (b *Board) Append(rec Record) error {
	if rec.Difficulty == 0 || rec.Difficulty == '|' || rec.Difficulty == '\n' {
		return fmt.Errorf("%w: difficulty code %q", ErrMalformed, rec.Difficulty)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	f, err := os.OpenFile(b.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("leaderboard: append: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(rec.line()); err != nil {
		return fmt.Errorf("leaderboard: append: %w", err)
	}
	logger.Log.Infof("leaderboard: %c %s %.2f", rec.Difficulty, rec.Username, rec.Score)
	return nil
}

// Load 读取所有记录；空行被跳过
func (b *Board) Load() ([]Record, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	f, err := os.Open(b.path)
	if err != nil {
		return nil, fmt.Errorf("leaderboard: load: %w", err)
	}
	defer f.Close()

	var out []Record
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		rec, err := parse(text)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformed, n, err)
		}
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("leaderboard: load: %w", err)
	}
	return out, nil
}

func parse(text string) (Record, error) {
	parts := strings.Split(text, "|")
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("want 3 fields, got %d", len(parts))
	}
	if len(parts[0]) != 1 {
		return Record{}, fmt.Errorf("difficulty %q", parts[0])
	}
	score, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return Record{}, err
	}
	return Record{Difficulty: parts[0][0], Username: parts[1], Score: score}, nil
}

// Top 指定难度的前 n 名（分数降序）；difficulty 为 0 表示全部，n<=0 表示不限
func (b *Board) Top(difficulty byte, n int) ([]Record, error) {
	all, err := b.Load()
	if err != nil {
		return nil, err
	}
	out := all[:0]
	for _, r := range all {
		if difficulty == 0 || r.Difficulty == difficulty {
			out = append(out, r)
		}
	}
	slices.SortStableFunc(out, func(a, b Record) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		}
		return 0
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out, nil
}
