package testsupport

import (
	"fmt"
	"strings"
)

// FFmpegScript answers -version, reports progress on stdout and writes a
// fixed payload to the output path (the last argument).
const FFmpegScript = `#!/bin/sh
for arg; do
  if [ "$arg" = "-version" ]; then
    echo "ffmpeg version 7.1-stub"
    exit 0
  fi
done
for last; do :; done
printf 'out_time_us=500000\nprogress=continue\nprogress=end\n'
printf 'redacted-video' > "$last"
`

// FFmpegOutput is the payload FFmpegScript renders.
const FFmpegOutput = "redacted-video"

// FailingFFmpegScript loads successfully and fails every render with message.
func FailingFFmpegScript(message string) string {
	return fmt.Sprintf(`#!/bin/sh
for arg; do
  if [ "$arg" = "-version" ]; then
    echo "ffmpeg version 7.1-stub"
    exit 0
  fi
done
echo %s >&2
exit 1
`, shellQuote(message))
}

// FFprobeScript prints an h264 stream of the given geometry at 30 fps and an
// aac stream for any existing file, and fails for missing ones.
func FFprobeScript(width, height int, duration float64) string {
	payload := fmt.Sprintf(`{"streams":[{"index":0,"codec_name":"h264","codec_type":"video","width":%d,"height":%d,"duration":"%.3f","avg_frame_rate":"30/1"},{"index":1,"codec_name":"aac","codec_type":"audio","channels":2}],"format":{"nb_streams":2,"duration":"%.3f","format_name":"mov,mp4"}}`,
		width, height, duration, duration)
	return fmt.Sprintf(`#!/bin/sh
for last; do :; done
if [ ! -f "$last" ]; then
  echo "$last: No such file or directory" >&2
  exit 1
fi
printf '%%s\n' %s
`, shellQuote(payload))
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'\''`) + "'"
}
