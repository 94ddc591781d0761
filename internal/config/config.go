package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/coreman2200/funtimes-qotd/internal/layout"
	"github.com/coreman2200/funtimes-qotd/internal/render"
)

type Strip struct {
	Pixels  int    `yaml:"pixels"`   // physical LEDs on the strip
	Lit     int    `yaml:"lit"`      // LEDs driven by the engine
	Port    string `yaml:"spi_port"` // e.g. "/dev/spidev0.0"; "" picks the first
	FreqKHz int    `yaml:"freq_khz"` // e.g. 2500
}

type Program struct {
	Name     string     `yaml:"name,omitempty"`
	Palette  [][3]uint8 `yaml:"palette,flow"`
	CycleMS  int        `yaml:"cycle_ms"`
	OffsetMS int        `yaml:"offset_ms"`
}

type Seats struct {
	Pins   []string `yaml:"pins,flow"`
	Groups [][]int  `yaml:"groups,flow"`
}

// Scene is what the room sounds and looks like: one track plus a
// background/foreground program pair.
type Scene struct {
	Track      int `yaml:"track"`
	Background int `yaml:"background"`
	Foreground int `yaml:"foreground"`
}

// IdleScene applies while fewer than Below people are seated; Below 0 is the
// catch-all and must come last.
type IdleScene struct {
	Below int `yaml:"below"`
	Scene `yaml:",inline"`
}

type Question struct {
	Text  string `yaml:"text"`
	Scene `yaml:",inline"`
}

type PowerCfg struct {
	WhiteCap float64 `yaml:"white_cap"` // per-LED cap on R+G+B, 0..765; 0 disables
	ChanMA   float64 `yaml:"led_chan_ma"`
	BudgetMA float64 `yaml:"budget_ma"` // 0 disables
}

type Config struct {
	Driver        string `yaml:"driver"` // "spi" | "sim"
	FPS           int    `yaml:"fps"`
	PlayersNeeded int    `yaml:"players_needed"`
	RoundSize     int    `yaml:"round_size"`
	PreviewAddr   string `yaml:"preview_addr,omitempty"`

	Strip    Strip     `yaml:"strip"`
	Power    PowerCfg  `yaml:"power"`
	Programs []Program `yaml:"programs"`

	Audio struct {
		Enabled    bool     `yaml:"enabled"`
		SampleRate int      `yaml:"sample_rate"`
		Dir        string   `yaml:"dir"`
		Tracks     []string `yaml:"tracks"`
	} `yaml:"audio"`

	Seats     Seats       `yaml:"seats"`
	Scenes    []IdleScene `yaml:"scenes"`
	Questions []Question  `yaml:"questions"`
}

// Load reads path over the defaults, so a partial file only overrides what
// it names. The result is validated.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// LoadOrDefault is Load, except that a missing file yields Default and
// defaulted=true. A file that exists but does not parse or validate is an
// error.
func LoadOrDefault(path string) (c *Config, defaulted bool, err error) {
	c, err = Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return c, false, nil
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}

// Validate fails fast on anything the engine or orchestrator would otherwise
// trip over at tick time.
func (c *Config) Validate() error {
	var errs []error
	if c.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.FPS))
	}
	if c.Strip.Lit <= 0 || c.Strip.Lit > c.Strip.Pixels {
		errs = append(errs, fmt.Errorf("strip: lit %d must be in 1..%d", c.Strip.Lit, c.Strip.Pixels))
	}
	if _, err := c.Registry(); err != nil {
		errs = append(errs, err)
	}
	if len(c.Audio.Tracks) == 0 {
		errs = append(errs, errors.New("audio: no tracks"))
	}
	if len(c.Seats.Pins) != len(c.Seats.Groups) {
		errs = append(errs, fmt.Errorf("seats: %d pins for %d groups", len(c.Seats.Pins), len(c.Seats.Groups)))
	}
	for i, g := range c.Seats.Groups {
		for _, px := range g {
			if px < 0 || px >= c.Strip.Lit {
				errs = append(errs, fmt.Errorf("seats: group %d pixel %d outside lit strip", i, px))
			}
		}
	}
	if c.PlayersNeeded < 1 {
		errs = append(errs, errors.New("players_needed must be at least 1"))
	}
	if c.RoundSize < 1 || c.RoundSize > len(c.Questions) {
		errs = append(errs, fmt.Errorf("round_size %d must be in 1..%d", c.RoundSize, len(c.Questions)))
	}
	if len(c.Scenes) == 0 || c.Scenes[len(c.Scenes)-1].Below != 0 {
		errs = append(errs, errors.New("scenes: last scene must be the catch-all (below: 0)"))
	}
	for i, s := range c.Scenes {
		if i < len(c.Scenes)-1 && s.Below <= 0 {
			errs = append(errs, fmt.Errorf("scenes[%d]: below must be positive", i))
		}
		errs = append(errs, c.checkScene(fmt.Sprintf("scenes[%d]", i), s.Scene)...)
	}
	for i, q := range c.Questions {
		if q.Text == "" {
			errs = append(errs, fmt.Errorf("questions[%d]: empty text", i))
		}
		errs = append(errs, c.checkScene(fmt.Sprintf("questions[%d]", i), q.Scene)...)
	}
	return errors.Join(errs...)
}

func (c *Config) checkScene(where string, s Scene) []error {
	var errs []error
	if s.Track < 0 || s.Track >= len(c.Audio.Tracks) {
		errs = append(errs, fmt.Errorf("%s: unknown track %d", where, s.Track))
	}
	for _, id := range []int{s.Background, s.Foreground} {
		if id < 0 || id >= len(c.Programs) {
			errs = append(errs, fmt.Errorf("%s: unknown program %d", where, id))
		}
	}
	return errs
}

// Registry builds the color program registry; program i gets id i.
func (c *Config) Registry() (*render.Registry, error) {
	progs := make([]render.Program, len(c.Programs))
	for i, p := range c.Programs {
		pal := make([]render.Color, len(p.Palette))
		for j, s := range p.Palette {
			pal[j] = render.Color{R: float64(s[0]), G: float64(s[1]), B: float64(s[2])}
		}
		progs[i] = render.Program{Name: p.Name, Palette: pal, CycleMS: p.CycleMS, OffsetMS: p.OffsetMS}
	}
	if len(progs) == 0 {
		return nil, errors.New("programs: none configured")
	}
	return render.NewRegistry(progs...)
}

func (c *Config) Limiter() render.Limiter {
	return render.Limiter{WhiteCap: c.Power.WhiteCap, ChanMA: c.Power.ChanMA, BudgetMA: c.Power.BudgetMA}
}

// Default is the configuration of the installed piece.
func Default() *Config {
	l := layout.Default()
	c := &Config{
		Driver:        "spi",
		FPS:           60,
		PlayersNeeded: 2,
		RoundSize:     4,
		Strip:         Strip{Pixels: l.StripPixels, Lit: l.LitPixels, FreqKHz: 2500},
		Power:         PowerCfg{ChanMA: 20},
		Programs: []Program{
			{Name: "rgb-chase", Palette: [][3]uint8{{0, 0, 255}, {255, 0, 0}, {0, 255, 0}}, CycleMS: 250, OffsetMS: 10},
			{Name: "green-pulse", Palette: [][3]uint8{{0, 255, 0}, {0, 0, 0}}, CycleMS: 2800, OffsetMS: 200},
			{Name: "ocean", Palette: [][3]uint8{{0, 0, 255}, {0, 128, 255}, {0, 255, 0}}, CycleMS: 2800, OffsetMS: 200},
			{Name: "orchid", Palette: [][3]uint8{{255, 60, 255}, {128, 0, 128}, {255, 0, 0}}, CycleMS: 2800, OffsetMS: 200},
			{Name: "ember", Palette: [][3]uint8{{255, 255, 0}, {100, 100, 0}, {255, 0, 0}}, CycleMS: 2800, OffsetMS: 400},
			{Name: "dusk", Palette: [][3]uint8{{0, 0, 128}, {128, 0, 128}}, CycleMS: 2800, OffsetMS: 400},
			{Name: "sunset", Palette: [][3]uint8{{152, 50, 117}, {129, 29, 94}, {253, 47, 36}, {255, 111, 1}, {254, 216, 0}}, CycleMS: 5000},
			{Name: "lagoon", Palette: [][3]uint8{{0, 0, 255}, {0, 255, 0}}, CycleMS: 2500, OffsetMS: 100},
			{Name: "party", Palette: [][3]uint8{{245, 200, 0}, {240, 50, 240}, {230, 130, 0}, {0, 240, 0}}, CycleMS: 500},
		},
		Seats: Seats{
			Pins:   []string{"GPIO5", "GPIO26", "GPIO13", "GPIO6", "GPIO22", "GPIO19"},
			Groups: l.SeatPixels(),
		},
		Scenes: []IdleScene{
			{Below: 1, Scene: Scene{Track: 1, Background: 6, Foreground: 1}},
			{Below: 3, Scene: Scene{Track: 6, Background: 7, Foreground: 1}},
			{Below: 6, Scene: Scene{Track: 7, Background: 8, Foreground: 1}},
			{Scene: Scene{Track: 8, Background: 0, Foreground: 0}},
		},
		Questions: []Question{
			{Text: "Who do you love?", Scene: Scene{Track: 2, Background: 3, Foreground: 3}},
			{Text: "What is your dream?", Scene: Scene{Track: 5, Background: 2, Foreground: 2}},
			{Text: "What are you looking forward to?", Scene: Scene{Track: 4, Background: 4, Foreground: 4}},
			{Text: "When is the last time you cried?", Scene: Scene{Track: 0, Background: 5, Foreground: 5}},
		},
	}
	c.Audio.Enabled = true
	c.Audio.SampleRate = 44100
	c.Audio.Dir = "sounds"
	c.Audio.Tracks = []string{"bg1.ogg", "cv1.ogg", "cv2.ogg", "epl2.ogg", "epl1.ogg", "cfl1.ogg", "blues.ogg", "uptown.ogg", "take.ogg"}
	return c
}
