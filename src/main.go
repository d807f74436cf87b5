package main

import (
	"bufio"
	"context"
	"flag"
	"io"
	"log"
	"net"
	"net/url"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jinjor/desktop-synth/src/audio"
	"golang.org/x/sync/errgroup"
)

var (
	sampleRate   = flag.Int("rate", audio.DefaultSampleRate, "sample rate in Hz")
	sockFileName = flag.String("sock", "/tmp/desktop-synth.sock", "path of the control socket")
	useMidi      = flag.Bool("midi", true, "listen to the first MIDI input")
)

func main() {
	flag.Parse()
	log.SetFlags(log.Lshortfile)
	log.Printf("NumCPU: %v\n", runtime.NumCPU())

	ctx := context.Background()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	audio, err := audio.NewAudio(*sampleRate)
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	defer audio.Close()

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(signalCh)
		cancel()
	}()
	go func() {
		sig := <-signalCh
		log.Printf("Caught signal %s: shutting down...\n", sig)
		cancel()
	}()
	err = withIPCConnection(ctx, *sockFileName, func(conn net.Conn) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			return audio.Start(ctx)
		})
		g.Go(func() error {
			return receiveCommands(ctx, conn, audio.CommandCh)
		})
		g.Go(func() error {
			return sendReports(ctx, conn, audio)
		})
		if *useMidi {
			g.Go(func() error {
				return receiveMidi(ctx, audio)
			})
		}
		return g.Wait()
	})
	if err != nil {
		log.Fatalf("error: %v\n", err)
	}
	log.Println("main() ended.")
}

func withIPCConnection(ctx context.Context, sockFileName string, f func(net.Conn) error) error {
	os.Remove(sockFileName)
	listener, err := new(net.ListenConfig).Listen(ctx, "unix", sockFileName)
	if err != nil {
		return err
	}
	defer func() {
		log.Println("Closing IPC...")
		err := listener.Close()
		if err != nil {
			log.Printf("error while closing listener: %v", err)
		}
		os.Remove(sockFileName)
	}()
	log.Printf("start listening on %s...\n", sockFileName)
	conn, err := listener.Accept()
	if err != nil {
		return err
	}
	defer func() {
		err := conn.Close()
		if err != nil {
			log.Printf("error while closing connection: %v", err)
		}
	}()
	return f(conn)
}

func receiveCommands(ctx context.Context, conn net.Conn, commandCh chan<- []string) error {
	reader := bufio.NewReader(conn)
	var line []byte
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("Connection interrupted")
			break loop
		default:
		}
		next, isPrefix, err := reader.ReadLine()
		if err == io.EOF {
			break loop
		}
		if err != nil {
			return err
		}
		line = append(line, next...)
		if isPrefix {
			continue
		}
		command, err := parseCommand(string(line))
		line = []byte{}
		if err != nil {
			log.Printf("malformed command: %v\n", err)
			continue
		}
		if len(command) == 0 {
			continue
		}
		log.Printf("received: %v\n", command)
		commandCh <- command
	}
	log.Println("receiveCommands() ended.")
	return nil
}

func parseCommand(line string) ([]string, error) {
	lineStr := strings.Fields(line)
	for i, item := range lineStr {
		escaped, err := url.QueryUnescape(item)
		if err != nil {
			return nil, err
		}
		lineStr[i] = escaped
	}
	return lineStr, nil
}

func receiveMidi(ctx context.Context, a *audio.Audio) error {
	for data := range audio.ListenToMidiIn(ctx) {
		a.AddMidiEvent(data)
	}
	log.Println("receiveMidi() ended.")
	return nil
}

func sendReports(ctx context.Context, conn net.Conn, audio *audio.Audio) error {
	t := time.NewTicker(time.Second / 60)
	defer t.Stop()
loop:
	for {
		select {
		case <-ctx.Done():
			log.Println("sendReports() interrupted")
			break loop
		case <-t.C:
			var sb strings.Builder
			if result := audio.GetFFT(); result != nil {
				sb.WriteString("fft")
				for _, value := range result {
					sb.WriteString(" " + strconv.FormatFloat(value, 'f', 6, 64))
				}
				sb.WriteString("\n")
			}
			if audio.Changes.Has("data") {
				audio.Changes.Delete("data")
				sb.WriteString("state ")
				sb.Write(audio.ToJSON())
				sb.WriteString("\n")
			}
			if sb.Len() == 0 {
				continue
			}
			if _, err := conn.Write([]byte(sb.String())); err != nil {
				return err
			}
		}
	}
	log.Println("sendReports() ended.")
	return nil
}
