// decoder.go — декодирование аудиофайла во внутреннее сжатое представление.
package voice

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// Decoder — способность перекодировать файл с диска в сжатый поток
// фиксированного битрейта.
type Decoder interface {
	Decode(ctx context.Context, path string) ([]byte, error)
}

// FFmpegDecoder — декодер через внешний процесс ffmpeg.
type FFmpegDecoder struct {
	// ffmpegPath — путь к бинарю ffmpeg
	ffmpegPath string
}

// NewFFmpegDecoder создаёт декодер. ffmpegPath — путь к бинарю
// (обычно просто "ffmpeg" из PATH).
func NewFFmpegDecoder(ffmpegPath string) *FFmpegDecoder {
	return &FFmpegDecoder{ffmpegPath: ffmpegPath}
}

// Decode перекодирует файл в mp3-поток с битрейтом Bitrate и
// возвращает его целиком. Любая ошибка ffmpeg — ErrDecode.
func (d *FFmpegDecoder) Decode(ctx context.Context, path string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, d.ffmpegPath,
		"-i", path,
		"-f", "mp3",
		"-b:a", strconv.Itoa(Bitrate),
		"-vn",
		"pipe:1",
	)

	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%w: ffmpeg %s: %s", ErrDecode, err, stderr.String())
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: ffmpeg вернул пустой поток для %s", ErrDecode, path)
	}

	return out.Bytes(), nil
}
