package audit

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

// FileAppender - запись в файл
type FileAppender struct {
	mu          sync.Mutex
	file        *os.File
	filePath    string
	maxSize     int64 // Максимальный размер файла в байтах
	maxBackups  int   // Количество backup файлов
	currentSize int64
	level       Level
	formatJSON  bool
}

// FileAppenderConfig - конфигурация file appender
type FileAppenderConfig struct {
	FilePath   string
	MaxSize    int64 // В байтах (0 = 100 MB)
	MaxBackups int   // 0 = 5
	Level      Level
	FormatJSON bool
}

// NewFileAppender - создать file appender
func NewFileAppender(config FileAppenderConfig) (*FileAppender, error) {
	// Создаем директорию если не существует
	dir := filepath.Dir(config.FilePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	// Открываем файл
	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit file: %w", err)
	}

	// Получаем размер файла
	fileInfo, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat file: %w", err)
	}

	maxSize := config.MaxSize
	if maxSize == 0 {
		maxSize = 100 << 20
	}

	maxBackups := config.MaxBackups
	if maxBackups == 0 {
		maxBackups = 5 // По умолчанию 5 backup файлов
	}

	return &FileAppender{
		file:        file,
		filePath:    config.FilePath,
		maxSize:     maxSize,
		maxBackups:  maxBackups,
		currentSize: fileInfo.Size(),
		level:       config.Level,
		formatJSON:  config.FormatJSON,
	}, nil
}

// Append - записать entry в файл
func (fa *FileAppender) Append(ctx context.Context, entry *Entry) error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	// Фильтруем по уровню
	filtered := entry.FilterByLevel(fa.level)

	var data []byte
	var err error

	if fa.formatJSON {
		data, err = filtered.ToJSON()
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}
		data = append(data, '\n')
	} else {
		data = []byte(filtered.String() + "\n")
	}

	// Проверяем нужна ли ротация
	if fa.currentSize+int64(len(data)) > fa.maxSize {
		if err := fa.rotate(); err != nil {
			return fmt.Errorf("failed to rotate file: %w", err)
		}
	}

	// Записываем
	n, err := fa.file.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write entry: %w", err)
	}

	fa.currentSize += int64(n)
	return nil
}

// rotate - ротация: audit.log → audit.log.1 → ... → audit.log.N (самый старый удаляется)
func (fa *FileAppender) rotate() error {
	if err := fa.file.Close(); err != nil {
		return err
	}

	os.Remove(fmt.Sprintf("%s.%d", fa.filePath, fa.maxBackups))
	for i := fa.maxBackups - 1; i > 0; i-- {
		oldPath := fmt.Sprintf("%s.%d", fa.filePath, i)
		if _, err := os.Stat(oldPath); err == nil {
			os.Rename(oldPath, fmt.Sprintf("%s.%d", fa.filePath, i+1))
		}
	}

	if err := os.Rename(fa.filePath, fa.filePath+".1"); err != nil {
		return err
	}

	file, err := os.OpenFile(fa.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}

	fa.file = file
	fa.currentSize = 0
	return nil
}

// Close - закрыть файл
func (fa *FileAppender) Close() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Close()
	}

	return nil
}

// Flush - сбросить буфер
func (fa *FileAppender) Flush() error {
	fa.mu.Lock()
	defer fa.mu.Unlock()

	if fa.file != nil {
		return fa.file.Sync()
	}

	return nil
}

// CurrentSize - текущий размер файла
func (fa *FileAppender) CurrentSize() int64 {
	fa.mu.Lock()
	defer fa.mu.Unlock()
	return fa.currentSize
}

// FilePath - путь к файлу
func (fa *FileAppender) FilePath() string {
	return fa.filePath
}

// ZerologAppender - запись в структурированный лог приложения
type ZerologAppender struct {
	logger zerolog.Logger
	level  Level
}

// NewZerologAppender - создать appender поверх zerolog
func NewZerologAppender(logger zerolog.Logger, level Level) *ZerologAppender {
	return &ZerologAppender{
		logger: logger.With().Str("component", "audit").Logger(),
		level:  level,
	}
}

// Append - записать entry одним событием лога
// Неудачные операции пишутся с уровнем warn
func (za *ZerologAppender) Append(ctx context.Context, entry *Entry) error {
	filtered := entry.FilterByLevel(za.level)

	event := za.logger.Info()
	if filtered.Status == StatusFailure {
		event = za.logger.Warn()
	}

	event = event.
		Str("audit_id", filtered.ID).
		Str("operation", string(filtered.Operation)).
		Str("status", string(filtered.Status)).
		Str("entity", filtered.Entity).
		Str("resource", filtered.Resource).
		Int64("records", filtered.RecordsAffected).
		Dur("duration", filtered.Duration)

	if filtered.User != "" {
		event = event.Str("user", filtered.User)
	}
	if filtered.Guild != "" {
		event = event.Str("guild", filtered.Guild)
	}
	if filtered.ErrorMessage != "" {
		event = event.Str("error", filtered.ErrorMessage).Str("error_class", filtered.ErrorClass)
	}
	if filtered.Metadata != nil {
		event = event.Interface("metadata", filtered.Metadata)
	}
	if filtered.Data != nil {
		event = event.Interface("data", filtered.Data)
	}

	event.Msg("audit")
	return nil
}

// Close - noop
func (za *ZerologAppender) Close() error {
	return nil
}

// NullAppender - пустой appender
type NullAppender struct{}

// NewNullAppender - создать null appender
func NewNullAppender() *NullAppender {
	return &NullAppender{}
}

func (na *NullAppender) Append(ctx context.Context, entry *Entry) error { return nil }
func (na *NullAppender) Close() error                                   { return nil }
