// Package avatar generates identicon images for new accounts and stores
// avatar files fetched from external profile URLs.
package avatar

import (
	"context"
	"crypto/rand"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math/big"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	imageSize  = 256
	gridSize   = 5
	avatarsDir = "users/avatars"
)

// Store writes avatar files under a configured uploads directory and
// produces the URL paths they are served from.
type Store struct {
	uploadsDir string
	client     *http.Client
}

// NewStore creates a store rooted at uploadsDir.
func NewStore(uploadsDir string) *Store {
	return &Store{
		uploadsDir: uploadsDir,
		client:     &http.Client{Timeout: 15 * time.Second},
	}
}

// Generate renders a random 5x5 mirrored identicon PNG for the user and
// returns the URL path of the stored file.
func (s *Store) Generate(userID string) (string, error) {
	filename := fmt.Sprintf("avatar_%s_%s.png", userID, uuid.NewString())
	fullPath := filepath.Join(s.uploadsDir, avatarsDir, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	img, err := renderIdenticon()
	if err != nil {
		return "", err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		os.Remove(fullPath)
		return "", err
	}
	return path.Join("/uploads", avatarsDir, filename), nil
}

// SaveFromURL downloads an image and stores it as the user's avatar,
// returning the URL path of the stored file. Partial files are removed
// on failure.
func (s *Store) SaveFromURL(ctx context.Context, photoURL, userID string) (string, error) {
	parsed, err := url.Parse(photoURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid avatar url %q", photoURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch avatar: unexpected status %d", resp.StatusCode)
	}

	filename := fmt.Sprintf("avatar_%s_%s.jpg", userID, uuid.NewString())
	fullPath := filepath.Join(s.uploadsDir, avatarsDir, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(fullPath)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(fullPath)
		return "", err
	}
	return path.Join("/uploads", avatarsDir, filename), nil
}

// Save stores raw avatar bytes uploaded by a client and returns the URL
// path of the stored file. ext must include the leading dot.
func (s *Store) Save(userID, ext string, data []byte) (string, error) {
	filename := fmt.Sprintf("avatar_%s_%s%s", userID, uuid.NewString(), ext)
	fullPath := filepath.Join(s.uploadsDir, avatarsDir, filename)

	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, data, 0o644); err != nil {
		return "", err
	}
	return path.Join("/uploads", avatarsDir, filename), nil
}

// Remove deletes the stored file behind an avatar URL, matching by base
// filename. Unknown or already-removed files are not an error.
func (s *Store) Remove(avatarURL string) error {
	if avatarURL == "" {
		return nil
	}
	fullPath := filepath.Join(s.uploadsDir, avatarsDir, path.Base(avatarURL))
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// renderIdenticon draws a symmetric grid pattern in a random color that
// stays visibly darker than the white background.
func renderIdenticon() (image.Image, error) {
	primary, err := randomColor()
	if err != nil {
		return nil, err
	}

	half := (gridSize + 1) / 2
	cells := make([][]bool, gridSize)
	for row := range cells {
		cells[row] = make([]bool, gridSize)
		for col := 0; col < half; col++ {
			on, err := randomBit()
			if err != nil {
				return nil, err
			}
			cells[row][col] = on
			cells[row][gridSize-1-col] = on
		}
	}

	img := image.NewRGBA(image.Rect(0, 0, imageSize, imageSize))
	square := imageSize / gridSize
	cell := func(px int) int {
		idx := px / square
		if idx >= gridSize {
			idx = gridSize - 1
		}
		return idx
	}
	for y := 0; y < imageSize; y++ {
		for x := 0; x < imageSize; x++ {
			if cells[cell(y)][cell(x)] {
				img.Set(x, y, primary)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	return img, nil
}

func randomColor() (color.RGBA, error) {
	// Cap channels at 225 so the pattern never fades into the background.
	limit := big.NewInt(226)
	channels := make([]uint8, 3)
	for i := range channels {
		n, err := rand.Int(rand.Reader, limit)
		if err != nil {
			return color.RGBA{}, err
		}
		channels[i] = uint8(n.Int64())
	}
	return color.RGBA{R: channels[0], G: channels[1], B: channels[2], A: 255}, nil
}

func randomBit() (bool, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(2))
	if err != nil {
		return false, err
	}
	return n.Int64() == 1, nil
}
