package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	aidj "github.com/Blackmvmba88/ai-dj"
	"github.com/Blackmvmba88/ai-dj/cmd"
	"github.com/Blackmvmba88/ai-dj/deck"
	"github.com/Blackmvmba88/ai-dj/oto"
	"github.com/Blackmvmba88/ai-dj/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original project file is.")
	play := flag.Bool("p", false, "Play the input projects (default behaviour when no other output is defined).")
	live := flag.Bool("i", false, "Play the project live, with all tracks started and MIDI input toggling tracks. Ctrl-C to quit.")
	midiPrefix := flag.String("m", "", "Open the first MIDI input whose name starts with the given prefix; only used with -i.")
	length := flag.Float64("l", 0, "Length of the rendered output in seconds. 0 renders one full cycle of the longest track.")
	rawOut := flag.Bool("r", false, "Output the rendered project as .raw file. By default, saves stereo float32 buffer to disk.")
	wavOut := flag.Bool("w", false, "Output the rendered project as .wav file. By default, saves stereo float32 buffer to disk.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	if !*rawOut && !*wavOut && !*live {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play the file
	}
	var audioContext aidj.AudioContext
	if *play || *live {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			_, name := filepath.Split(filename)
			dir := *directory
			if dir == "" {
				var err error
				dir, err = os.Getwd()
				if err != nil {
					return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
				}
			}
			name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
			if err := os.MkdirAll(dir, os.ModePerm); err != nil {
				return fmt.Errorf("could not create output directory %v: %v", dir, err)
			}
			f := filepath.Join(dir, name)
			if err := os.WriteFile(f, contents, 0644); err != nil {
				return fmt.Errorf("could not write file %v: %v", f, err)
			}
			return nil
		}
		broker := deck.NewBroker()
		model := deck.NewModel(broker)
		engine := deck.NewEngine(broker, 44100)
		file, err := os.Open(filename)
		if err != nil {
			return fmt.Errorf("could not open file %v: %v", filename, err)
		}
		model.ReadProject(file)
		for _, a := range model.Alerts() {
			if a.Priority >= deck.Error {
				return fmt.Errorf("could not load project %v: %v", filename, a.Message)
			}
			fmt.Fprintf(os.Stderr, "%v\n", a.Message)
		}
		for _, t := range model.Tracks() {
			t.SetPending(aidj.StartOnNextMeasure)
		}
		if *live {
			return playLive(model, engine, audioContext, *midiPrefix)
		}
		buffer := render(model, engine, *length)
		if *play {
			playWaiter := audioContext.Play(buffer.Source())
			defer playWaiter.Wait()
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, _ := filepath.Glob(filepath.Join(param, "*.json"))
			ymlfiles, _ := filepath.Glob(filepath.Join(param, "*.yml"))
			for _, file := range append(ymlfiles, jsonfiles...) {
				if err := process(file); err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			if err := process(param); err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

// render runs the engine offline for the requested number of seconds. With
// seconds <= 0, the length is one full cycle of the longest track: its
// measure count times four passes when pages are in use.
func render(model *deck.Model, engine *deck.Engine, seconds float64) aidj.AudioBuffer {
	const sampleRate = 44100
	bpm, sig := model.BPM(), model.TimeSignature()
	if seconds <= 0 {
		measures := 1
		passes := 1
		for _, t := range model.Tracks() {
			if t.Pattern.NumMeasures > measures {
				measures = t.Pattern.NumMeasures
			}
			if t.Pattern.UsePages {
				passes = aidj.NumPages
			}
		}
		secondsPerStep := 60 / bpm / float64(sig.StepsPerBeat())
		seconds = float64(measures*passes*sig.GridSteps()) * secondsPerStep
	}
	ctx := deck.NullProcessContext{BPMValue: bpm, Sig: sig, Playing: true}
	buffer := make(aidj.AudioBuffer, int(seconds*sampleRate))
	for frame := 0; frame < len(buffer); {
		n := len(buffer) - frame
		if n > 1024 {
			n = 1024
		}
		engine.Process(buffer[frame:frame+n], ctx)
		frame += n
	}
	return buffer
}

// playLive streams the engine straight to the audio output, with MIDI note
// input toggling tracks measure-aligned. Runs until interrupted; Ctrl-C asks
// the engine-driving source to finish, the player drains, and the model is
// shut down once the engine has confirmed.
func playLive(model *deck.Model, engine *deck.Engine, audioContext aidj.AudioContext, midiPrefix string) error {
	midiContext := cmd.NewMidiContext()
	defer midiContext.Close()
	midiContext.TryToOpenBy(midiPrefix, midiPrefix == "")
	ctx := &transportContext{
		MIDIContext: midiContext,
		bpm:         model.BPM(),
		sig:         model.TimeSignature(),
	}
	broker := model.Broker()
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		deck.TrySend(broker.CloseEngine, struct{}{})
	}()
	playWaiter := audioContext.Play(&engineSource{engine: engine, ctx: ctx, broker: broker})
	exec := make(chan func(), 16)
	go model.Run(exec)
	playWaiter.Wait()
	deck.TimeoutReceive(broker.FinishedEngine, 3*time.Second)
	deck.TrySend(broker.CloseModel, struct{}{})
	deck.TimeoutReceive(broker.FinishedModel, 3*time.Second)
	return nil
}

type (
	// engineSource pulls audio straight from the engine, so the oto player
	// drives the render path the same way a plugin host would. A closure
	// request on the broker ends the stream; the source confirms by closing
	// FinishedEngine before reporting EOF.
	engineSource struct {
		engine *deck.Engine
		ctx    deck.EngineProcessContext
		broker *deck.Broker
	}

	// transportContext overlays the project tempo and time signature on a
	// MIDI context that does not provide them.
	transportContext struct {
		deck.MIDIContext
		bpm float64
		sig aidj.TimeSignature
	}
)

func (s *engineSource) ReadAudio(buf aidj.AudioBuffer) (int, error) {
	select {
	case <-s.broker.CloseEngine:
		close(s.broker.FinishedEngine)
		return 0, io.EOF
	default:
	}
	s.engine.Process(buf, s.ctx)
	return len(buf), nil
}

func (c *transportContext) BPM() (float64, bool) { return c.bpm, c.bpm > 0 }
func (c *transportContext) TimeSignature() (aidj.TimeSignature, bool) {
	return c.sig, c.sig.Numerator > 0
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Command line utility for rendering and playing .yml/.json project files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
