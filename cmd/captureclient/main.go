// captureclient replays a WAV file against the control API, simulating a
// push-to-talk client: start a session, stream PCM in real-time chunks,
// stop and print the outcome.
package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"
)

// WAV header is 44 bytes for standard PCM files
const wavHeaderSize = 44

// Stream audio in chunks to simulate real-time capture.
// At 16kHz 16-bit mono = 32000 bytes/second; 100ms chunks = 3200 bytes.
const chunkSize = 3200
const chunkIntervalMs = 100

func main() {
	audioFile := flag.String("audio", "testdata/sample-16khz.wav", "Path to WAV file (16kHz 16-bit mono)")
	serverAddr := flag.String("server", "http://localhost:8080", "Control API base URL")
	flag.Parse()

	f, err := os.Open(*audioFile)
	if err != nil {
		log.Fatalf("Failed to open audio file: %v", err)
	}
	defer f.Close()

	header := make([]byte, wavHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		log.Fatalf("Failed to read WAV header: %v", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		log.Fatal("Not a valid WAV file")
	}

	audioFormat := binary.LittleEndian.Uint16(header[20:22])
	numChannels := binary.LittleEndian.Uint16(header[22:24])
	sampleRate := binary.LittleEndian.Uint32(header[24:28])
	bitsPerSample := binary.LittleEndian.Uint16(header[34:36])

	log.Printf("WAV file: format=%d channels=%d sampleRate=%d bitsPerSample=%d",
		audioFormat, numChannels, sampleRate, bitsPerSample)

	if audioFormat != 1 { // PCM
		log.Fatal("Only PCM format supported")
	}
	if sampleRate != 16000 {
		log.Printf("Warning: Sample rate is %d Hz, expected 16000 Hz", sampleRate)
	}

	client := &http.Client{Timeout: 60 * time.Second}

	// Start a session
	sessionID := startSession(client, *serverAddr)
	log.Printf("Session started: %s", sessionID)

	// Stream audio in chunks
	audioChunk := make([]byte, chunkSize)
	var totalBytes int64
	var chunkNum int
	startTime := time.Now()

	for {
		n, err := f.Read(audioChunk)
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Fatalf("Failed to read audio: %v", err)
		}

		chunkNum++
		totalBytes += int64(n)

		pushChunk(client, *serverAddr, sessionID, audioChunk[:n])

		if chunkNum%10 == 0 {
			log.Printf("Sent chunk %d (%d bytes total)", chunkNum, totalBytes)
		}

		// Simulate real-time capture
		time.Sleep(chunkIntervalMs * time.Millisecond)
	}

	elapsed := time.Since(startTime)
	log.Printf("Finished streaming: %d chunks, %d bytes in %v", chunkNum, totalBytes, elapsed)

	// Stop and print the outcome
	log.Println("Stopping session, waiting for the backend verdict...")
	stopSession(client, *serverAddr, sessionID)
}

func startSession(client *http.Client, base string) string {
	resp, err := client.Post(base+"/v1/sessions", "application/json", nil)
	if err != nil {
		log.Fatalf("Failed to start session: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Start refused (%d): %s", resp.StatusCode, body)
	}

	var started struct {
		SessionID string `json:"sessionId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		log.Fatalf("Failed to decode start response: %v", err)
	}
	return started.SessionID
}

func pushChunk(client *http.Client, base, sessionID string, chunk []byte) {
	url := fmt.Sprintf("%s/v1/sessions/%s/audio", base, sessionID)
	resp, err := client.Post(url, "application/octet-stream", bytes.NewReader(chunk))
	if err != nil {
		log.Fatalf("Failed to push audio: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusAccepted {
		body, _ := io.ReadAll(resp.Body)
		log.Fatalf("Audio push refused (%d): %s", resp.StatusCode, body)
	}
}

func stopSession(client *http.Client, base, sessionID string) {
	url := fmt.Sprintf("%s/v1/sessions/%s/stop", base, sessionID)
	resp, err := client.Post(url, "application/json", nil)
	if err != nil {
		log.Fatalf("Failed to stop session: %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		log.Fatalf("Stop failed (%d): %s", resp.StatusCode, body)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		log.Printf("Result: %s", body)
		return
	}
	log.Printf("Result:\n%s", pretty.String())
}
