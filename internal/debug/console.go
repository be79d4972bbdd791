package debug

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/term"

	"github.com/Versifine/strafe/internal/character"
	"github.com/Versifine/strafe/internal/locomotion"
)

const (
	defaultTickInterval = 20 * time.Millisecond
	defaultMovePulse    = 180 * time.Millisecond
	yawStep             = 5.0
)

type ControlledCharacter interface {
	Tick(in locomotion.Input, dt float64) error
	Snapshot() character.Snapshot
	Teleport(pos mgl64.Vec3)
	Knockback(direction mgl64.Vec3, force, duration float64)
	SpeedBoost(multiplier, duration float64)
	Launch(upwardForce, horizontalMultiplier float64)
	AddSpeedBonus(amount float64)
	SetPaused(paused bool)
}

// Console is a raw-terminal sandbox driving one character.
type Console struct {
	character    ControlledCharacter
	tickInterval time.Duration
	movePulse    time.Duration
	out          io.Writer

	mu            sync.Mutex
	currentInput  locomotion.Input
	forwardUntil  time.Time
	backwardUntil time.Time
	leftUntil     time.Time
	rightUntil    time.Time
	forward       float64
	strafe        float64
	commandMode   bool
	commandBuf    []rune
	statusWidth   int
}

func NewConsole(ch ControlledCharacter, tickInterval time.Duration) *Console {
	if tickInterval <= 0 {
		tickInterval = defaultTickInterval
	}
	return &Console{
		character:    ch,
		tickInterval: tickInterval,
		movePulse:    defaultMovePulse,
		out:          os.Stdout,
	}
}

func (c *Console) Start(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("console is nil")
	}
	if c.character == nil {
		return fmt.Errorf("console character is nil")
	}

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("set terminal raw mode: %w", err)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
		fmt.Fprint(c.out, "\r\n")
	}()

	fmt.Fprint(c.out, "[debug] console started (W/A/S/D pulse, Space jump, C crouch, V walk, arrows, :)\r\n")
	c.renderStatusLine()

	go c.tickLoop(ctx)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		b, err := reader.ReadByte()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read console input: %w", err)
		}
		if b == 3 { // Ctrl+C in raw mode
			return nil
		}
		c.handleKey(reader, b)
	}
}

func (c *Console) tickLoop(ctx context.Context) {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()
	dt := c.tickInterval.Seconds()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.character.Tick(c.getInput(), dt); err != nil {
				slog.Debug("debug character tick failed", "error", err)
			}
			c.renderStatusLine()
		}
	}
}

func (c *Console) handleKey(reader *bufio.Reader, b byte) {
	if c.isCommandMode() {
		c.handleCommandByte(b)
		return
	}

	switch b {
	case ':':
		c.enterCommandMode()
		return
	case 'w', 'W':
		c.pulse(&c.forward, &c.forwardUntil, &c.backwardUntil, 1)
	case 's', 'S':
		c.pulse(&c.forward, &c.backwardUntil, &c.forwardUntil, -1)
	case 'd', 'D':
		c.pulse(&c.strafe, &c.rightUntil, &c.leftUntil, 1)
	case 'a', 'A':
		c.pulse(&c.strafe, &c.leftUntil, &c.rightUntil, -1)
	case ' ':
		c.toggle(func(in *locomotion.Input) { in.Jump = !in.Jump })
	case 'c', 'C':
		c.toggle(func(in *locomotion.Input) { in.Crouch = !in.Crouch })
	case 'v', 'V':
		c.toggle(func(in *locomotion.Input) { in.Walk = !in.Walk })
	case 'x', 'X':
		c.clearInput()
	case 27: // ESC + arrow sequence
		if reader == nil {
			return
		}
		next, err := reader.ReadByte()
		if err != nil || next != '[' {
			return
		}
		arrow, err := reader.ReadByte()
		if err != nil {
			return
		}
		switch arrow {
		case 'D': // left
			c.adjustYaw(-yawStep)
		case 'C': // right
			c.adjustYaw(yawStep)
		}
	}
	c.renderStatusLine()
}

func (c *Console) enterCommandMode() {
	c.mu.Lock()
	c.commandMode = true
	c.commandBuf = c.commandBuf[:0]
	c.mu.Unlock()
	fmt.Fprint(c.out, "\r\n:")
}

func (c *Console) handleCommandByte(b byte) {
	switch b {
	case 13, 10: // Enter
		c.mu.Lock()
		cmd := strings.TrimSpace(string(c.commandBuf))
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()

		fmt.Fprint(c.out, "\r\n")
		if cmd != "" {
			c.executeCommand(cmd)
		}
		c.renderStatusLine()
		return
	case 27:
		c.mu.Lock()
		c.commandMode = false
		c.commandBuf = c.commandBuf[:0]
		c.mu.Unlock()
		fmt.Fprint(c.out, "\r\n[debug] command cancelled\r\n")
		c.renderStatusLine()
		return
	case 8, 127: // Backspace
		c.mu.Lock()
		if len(c.commandBuf) > 0 {
			c.commandBuf = c.commandBuf[:len(c.commandBuf)-1]
		}
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s ", buf)
		fmt.Fprintf(c.out, "\r:%s", buf)
		return
	default:
		if b < 32 || b > 126 {
			return
		}
		c.mu.Lock()
		c.commandBuf = append(c.commandBuf, rune(b))
		buf := string(c.commandBuf)
		c.mu.Unlock()
		fmt.Fprintf(c.out, "\r:%s", buf)
	}
}

func (c *Console) executeCommand(cmd string) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return
	}

	switch parts[0] {
	case "help":
		c.printHelp()
	case "state":
		s := c.character.Snapshot()
		fmt.Fprintf(c.out, "[debug] pos=(%.3f,%.3f,%.3f) vel=(%.3f,%.3f,%.3f) speed=%.3f ground=%t crouch=%t bonus=%.2f mods=%v paused=%t\r\n",
			s.Position.X(), s.Position.Y(), s.Position.Z(),
			s.Velocity.X(), s.Velocity.Y(), s.Velocity.Z(),
			s.Speed, s.Grounded, s.Crouched, s.SpeedBonus, s.Modifiers, s.Paused,
		)
	case "tp":
		v, ok := c.parseFloats(parts, 3, ":tp <x> <y> <z>")
		if !ok {
			return
		}
		c.character.Teleport(mgl64.Vec3{v[0], v[1], v[2]})
		fmt.Fprintf(c.out, "[debug] teleported to (%.3f, %.3f, %.3f)\r\n", v[0], v[1], v[2])
	case "knock":
		v, ok := c.parseFloats(parts, 5, ":knock <dx> <dy> <dz> <force> <seconds>")
		if !ok {
			return
		}
		c.character.Knockback(mgl64.Vec3{v[0], v[1], v[2]}, v[3], v[4])
		fmt.Fprintf(c.out, "[debug] knockback force=%.2f over %.2fs\r\n", v[3], v[4])
	case "boost":
		v, ok := c.parseFloats(parts, 2, ":boost <multiplier> <seconds>")
		if !ok {
			return
		}
		c.character.SpeedBoost(v[0], v[1])
		fmt.Fprintf(c.out, "[debug] speed x%.2f for %.2fs\r\n", v[0], v[1])
	case "launch":
		v, ok := c.parseFloats(parts, 2, ":launch <upward> <horizontal_multiplier>")
		if !ok {
			return
		}
		c.character.Launch(v[0], v[1])
		fmt.Fprintf(c.out, "[debug] launched up=%.2f x%.2f\r\n", v[0], v[1])
	case "bonus":
		v, ok := c.parseFloats(parts, 1, ":bonus <amount>")
		if !ok {
			return
		}
		c.character.AddSpeedBonus(v[0])
		fmt.Fprintf(c.out, "[debug] base speed +%.2f\r\n", v[0])
	case "pause":
		paused := !c.character.Snapshot().Paused
		c.character.SetPaused(paused)
		fmt.Fprintf(c.out, "[debug] paused=%t\r\n", paused)
	default:
		fmt.Fprintf(c.out, "[debug] unknown command: %s\r\n", parts[0])
	}
}

func (c *Console) parseFloats(parts []string, n int, usage string) ([]float64, bool) {
	if len(parts) != n+1 {
		fmt.Fprintf(c.out, "[debug] usage: %s\r\n", usage)
		return nil, false
	}
	values := make([]float64, n)
	for i := range values {
		v, err := strconv.ParseFloat(parts[i+1], 64)
		if err != nil {
			fmt.Fprintf(c.out, "[debug] invalid %s args\r\n", parts[0])
			return nil, false
		}
		values[i] = v
	}
	return values, true
}

func (c *Console) printHelp() {
	fmt.Fprint(c.out, "[debug] keys:\r\n")
	fmt.Fprint(c.out, "  W/S/A/D: pulse movement (~180ms)\r\n")
	fmt.Fprint(c.out, "  Space: toggle jump\r\n")
	fmt.Fprint(c.out, "  C: toggle crouch\r\n")
	fmt.Fprint(c.out, "  V: toggle walk\r\n")
	fmt.Fprint(c.out, "  Arrow Left/Right: yaw +/-5\r\n")
	fmt.Fprint(c.out, "  X: clear all input\r\n")
	fmt.Fprint(c.out, "  : enter command mode\r\n")
	fmt.Fprint(c.out, "[debug] commands:\r\n")
	fmt.Fprint(c.out, "  :tp <x> <y> <z>\r\n")
	fmt.Fprint(c.out, "  :knock <dx> <dy> <dz> <force> <seconds>\r\n")
	fmt.Fprint(c.out, "  :boost <multiplier> <seconds>\r\n")
	fmt.Fprint(c.out, "  :launch <upward> <horizontal_multiplier>\r\n")
	fmt.Fprint(c.out, "  :bonus <amount>\r\n")
	fmt.Fprint(c.out, "  :pause\r\n")
	fmt.Fprint(c.out, "  :state\r\n")
	fmt.Fprint(c.out, "  :help\r\n")
}

func (c *Console) renderStatusLine() {
	c.mu.Lock()
	if c.commandMode {
		c.mu.Unlock()
		return
	}
	input := c.currentInput
	input.Move = mgl64.Vec2{c.strafe, c.forward}
	width := c.statusWidth
	c.mu.Unlock()

	s := c.character.Snapshot()

	line := fmt.Sprintf(
		"[MOVE:%+.0f,%+.0f WLK:%s CRH:%s JMP:%s | YAW:%.1f | X:%.2f Y:%.2f Z:%.2f spd:%.2f ground:%t]",
		input.Move.X(),
		input.Move.Y(),
		boolLabel(input.Walk),
		boolLabel(input.Crouch),
		boolLabel(input.Jump),
		input.Yaw,
		s.Position.X(),
		s.Position.Y(),
		s.Position.Z(),
		s.Speed,
		s.Grounded,
	)

	padding := ""
	if width > len(line) {
		padding = strings.Repeat(" ", width-len(line))
	}
	fmt.Fprintf(c.out, "\r%s%s", line, padding)

	c.mu.Lock()
	if len(line) > c.statusWidth {
		c.statusWidth = len(line)
	}
	c.mu.Unlock()
}

func (c *Console) toggle(update func(*locomotion.Input)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	update(&c.currentInput)
}

func (c *Console) adjustYaw(delta float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.currentInput.Yaw = normalizeYaw(c.currentInput.Yaw + delta)
}

// pulse sets axis to value until the pulse expires and cancels the opposite
// direction.
func (c *Console) pulse(axis *float64, until, opposite *time.Time, value float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	*axis = value
	*until = time.Now().Add(c.movePulse)
	*opposite = time.Time{}
}

func (c *Console) getInput() locomotion.Input {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyMovementPulseLocked(time.Now())
	in := c.currentInput
	in.Move = mgl64.Vec2{c.strafe, c.forward}
	return in
}

func (c *Console) applyMovementPulseLocked(now time.Time) {
	expire := func(until *time.Time, axis *float64, value float64) {
		if until.IsZero() || now.Before(*until) {
			return
		}
		*until = time.Time{}
		if *axis == value {
			*axis = 0
		}
	}
	expire(&c.forwardUntil, &c.forward, 1)
	expire(&c.backwardUntil, &c.forward, -1)
	expire(&c.rightUntil, &c.strafe, 1)
	expire(&c.leftUntil, &c.strafe, -1)
}

func (c *Console) isCommandMode() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.commandMode
}

func (c *Console) clearInput() {
	c.mu.Lock()
	c.currentInput = locomotion.Input{}
	c.forward, c.strafe = 0, 0
	c.forwardUntil = time.Time{}
	c.backwardUntil = time.Time{}
	c.leftUntil = time.Time{}
	c.rightUntil = time.Time{}
	c.mu.Unlock()
}

func boolLabel(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

func normalizeYaw(yaw float64) float64 {
	for yaw <= -180 {
		yaw += 360
	}
	for yaw > 180 {
		yaw -= 360
	}
	return yaw
}
