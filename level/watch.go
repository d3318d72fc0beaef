package level

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"pathmania/logger"
)

// Watcher 监听关卡文件，变化后重新解析并替换到 Table
type Watcher struct {
	watcher *fsnotify.Watcher
	path    string
	table   *Table
	Reloads chan *Table
	closeCh chan struct{}
	once    sync.Once
}

// Watch 监听 path 所在目录（兼容编辑器的 rename 保存），只处理 path 本身的事件
func Watch(path string, table *Table) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, err
	}

	watcher := &Watcher{
		watcher: w,
		path:    abs,
		table:   table,
		Reloads: make(chan *Table, 4),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close 停止监听
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// debounce 合并连续写入事件，等文件写完再解析
const debounce = 100 * time.Millisecond

func (w *Watcher) run() {
	var timer *time.Timer
	var pending <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if name, _ := filepath.Abs(event.Name); name != w.path {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(debounce)
			pending = timer.C
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			logger.Log.Warnf("level: watch %s: %v", w.path, err)
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) reload() {
	t, err := Load(w.path)
	if err != nil {
		// 保留旧表
		logger.Log.Warnf("level: reload %s: %v", w.path, err)
		return
	}
	w.table.Replace(t)
	logger.Log.Infof("level: reloaded %s (%d levels)", w.path, len(t.Levels()))
	select {
	case w.Reloads <- w.table:
	default:
	}
}
