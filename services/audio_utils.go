package services

import (
	"io"
	"net/http"
	"os"

	tcmp3 "github.com/tcolgate/mp3"
)

// Tính thời lượng file MP3 cục bộ, trả về số giây
func GetMP3Duration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return decodeMP3Duration(f)
}

// Tính thời lượng file MP3 bằng URL, trả về số giây
func GetMP3DurationFromURL(url string) (float64, error) {
	resp, err := http.Get(url)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	return decodeMP3Duration(resp.Body)
}

func decodeMP3Duration(r io.Reader) (float64, error) {
	var (
		dur     float64
		dec     = tcmp3.NewDecoder(r)
		frame   tcmp3.Frame
		skipped int
	)

	for {
		if err := dec.Decode(&frame, &skipped); err != nil {
			if err == io.EOF {
				break
			}
			return 0, err
		}
		dur += frame.Duration().Seconds()
	}

	return dur, nil
}
