// Package console drives the player from typed commands.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"Sonicbar/core/library"
	"Sonicbar/core/player"
	"Sonicbar/core/utils"
	"Sonicbar/logger"
	"Sonicbar/model"
)

var (
	// ErrQuit is returned by Execute for quit/exit.
	ErrQuit          = errors.New("quit")
	ErrUnknown       = errors.New("unknown command")
	ErrUsage         = errors.New("usage")
	ErrNotConfigured = errors.New("not configured")
)

// Searcher runs library searches.
type Searcher interface {
	Search(ctx context.Context, query string, category library.Category) (library.Results, error)
}

// Library resolves library ids into tracks.
type Library interface {
	Track(ctx context.Context, id string) (model.Track, error)
	PlaylistSongs(ctx context.Context, id string) ([]model.Track, error)
}

// CatalogQueuer resolves catalog items into playable tracks.
type CatalogQueuer interface {
	Queue(ctx context.Context, kind, id string) ([]model.Track, error)
}

// QueueStore persists named queues.
type QueueStore interface {
	Save(ctx context.Context, name string, tracks []model.Track) error
	Load(ctx context.Context, name string) ([]model.Track, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context) ([]string, error)
}

// Dispatcher parses one command line at a time and applies it to the player.
type Dispatcher struct {
	player   *player.Player
	searcher Searcher
	library  Library
	catalog  CatalogQueuer
	queues   QueueStore
	out      io.Writer

	// 最近一次搜索的歌曲，pick/add/playall 使用 1 起始的编号
	results []model.Track
}

// Option configures optional collaborators.
type Option func(*Dispatcher)

func WithCatalog(c CatalogQueuer) Option { return func(d *Dispatcher) { d.catalog = c } }
func WithQueueStore(q QueueStore) Option { return func(d *Dispatcher) { d.queues = q } }

// New creates a Dispatcher writing its output to out.
func New(p *player.Player, searcher Searcher, lib Library, out io.Writer, opts ...Option) *Dispatcher {
	d := &Dispatcher{player: p, searcher: searcher, library: lib, out: out}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type command struct {
	usage string
	help  string
	run   func(d *Dispatcher, ctx context.Context, args []string) error
}

var commands map[string]*command
var commandOrder []string

func register(names []string, c *command) {
	for _, n := range names {
		commands[n] = c
	}
	commandOrder = append(commandOrder, names[0])
}

func init() {
	commands = make(map[string]*command)
	register([]string{"help", "h", "?"}, &command{usage: "help", help: "列出命令", run: (*Dispatcher).help})
	register([]string{"status", "s"}, &command{usage: "status", help: "当前播放状态", run: (*Dispatcher).status})
	register([]string{"play"}, &command{usage: "play [n]", help: "继续播放，或播放队列第 n 首", run: (*Dispatcher).play})
	register([]string{"pause"}, &command{usage: "pause", help: "暂停", run: (*Dispatcher).pause})
	register([]string{"toggle", "t"}, &command{usage: "toggle", help: "播放/暂停", run: (*Dispatcher).toggle})
	register([]string{"next", "n"}, &command{usage: "next", help: "下一首", run: (*Dispatcher).next})
	register([]string{"prev", "b"}, &command{usage: "prev", help: "上一首（超过 3 秒则从头播放）", run: (*Dispatcher).prev})
	register([]string{"seek"}, &command{usage: "seek <m:ss|秒|+秒|-秒>", help: "跳转", run: (*Dispatcher).seek})
	register([]string{"vol", "volume"}, &command{usage: "vol [0-100]", help: "查看或设置音量", run: (*Dispatcher).volume})
	register([]string{"mute", "m"}, &command{usage: "mute", help: "静音开关", run: (*Dispatcher).mute})
	register([]string{"repeat", "r"}, &command{usage: "repeat", help: "循环模式 off -> all -> one", run: (*Dispatcher).repeat})
	register([]string{"shuffle", "x"}, &command{usage: "shuffle", help: "随机播放开关", run: (*Dispatcher).shuffle})
	register([]string{"min"}, &command{usage: "min", help: "切换迷你播放条", run: (*Dispatcher).minimize})
	register([]string{"sidebar"}, &command{usage: "sidebar", help: "切换侧边栏", run: (*Dispatcher).sidebar})
	register([]string{"queue", "q"}, &command{usage: "queue", help: "查看播放队列", run: (*Dispatcher).queue})
	register([]string{"search", "/"}, &command{usage: "search [songs|artists|albums|playlists] <关键词>", help: "搜索本地曲库", run: (*Dispatcher).search})
	register([]string{"pick"}, &command{usage: "pick <n>", help: "只播放搜索结果第 n 首", run: (*Dispatcher).pick})
	register([]string{"playall"}, &command{usage: "playall", help: "播放全部搜索结果", run: (*Dispatcher).playAll})
	register([]string{"add"}, &command{usage: "add <n>", help: "把搜索结果第 n 首加入队列", run: (*Dispatcher).add})
	register([]string{"playlist"}, &command{usage: "playlist <id>", help: "播放本地歌单", run: (*Dispatcher).playlist})
	register([]string{"catalog"}, &command{usage: "catalog <track|album|playlist|artist|saved> [id]", help: "播放在线曲库内容", run: (*Dispatcher).catalogPlay})
	register([]string{"save"}, &command{usage: "save <name>", help: "保存当前队列", run: (*Dispatcher).saveQueue})
	register([]string{"load"}, &command{usage: "load <name>", help: "载入保存的队列", run: (*Dispatcher).loadQueue})
	register([]string{"saved"}, &command{usage: "saved", help: "列出保存的队列", run: (*Dispatcher).listQueues})
	register([]string{"drop"}, &command{usage: "drop <name>", help: "删除保存的队列", run: (*Dispatcher).dropQueue})
	register([]string{"quit", "exit"}, &command{usage: "quit", help: "退出", run: func(*Dispatcher, context.Context, []string) error { return ErrQuit }})
}

// Commands lists the primary command names in help order.
func Commands() []string {
	return append([]string(nil), commandOrder...)
}

// Execute runs one command line. Blank lines are ignored.
func (d *Dispatcher) Execute(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name := strings.ToLower(fields[0])
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknown, fields[0])
	}
	if err := cmd.run(d, ctx, fields[1:]); err != nil {
		if errors.Is(err, ErrUsage) {
			return fmt.Errorf("%w: %s", ErrUsage, cmd.usage)
		}
		return err
	}
	return nil
}

func (d *Dispatcher) printf(format string, args ...any) {
	fmt.Fprintf(d.out, format, args...)
}

func (d *Dispatcher) help(_ context.Context, _ []string) error {
	for _, name := range commandOrder {
		c := commands[name]
		d.printf("  %-52s %s\n", c.usage, c.help)
	}
	return nil
}

func (d *Dispatcher) status(_ context.Context, _ []string) error {
	d.printf("%s\n", StatusLine(d.player.Snapshot()))
	return nil
}

func (d *Dispatcher) play(_ context.Context, args []string) error {
	if len(args) == 0 {
		return d.player.Play()
	}
	n, err := parseIndex(args[0])
	if err != nil {
		return err
	}
	return d.player.PlayAt(n)
}

func (d *Dispatcher) pause(_ context.Context, _ []string) error  { return d.player.Pause() }
func (d *Dispatcher) toggle(_ context.Context, _ []string) error { return d.player.PlayPause() }
func (d *Dispatcher) next(_ context.Context, _ []string) error   { return d.player.Next() }
func (d *Dispatcher) prev(_ context.Context, _ []string) error   { return d.player.Prev() }

func (d *Dispatcher) seek(_ context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	d.player.SyncPosition()
	current := utils.SecondsToDuration(d.player.Snapshot().CurrentTime)
	pos, err := ParsePosition(args[0], current)
	if err != nil {
		return err
	}
	return d.player.Seek(pos)
}

func (d *Dispatcher) volume(_ context.Context, args []string) error {
	if len(args) == 0 {
		snap := d.player.Snapshot()
		d.printf("音量 %d%%%s\n", int(snap.Volume*100+0.5), mutedSuffix(snap.Muted))
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(args[0], "%"), 64)
	if err != nil {
		return ErrUsage
	}
	d.player.SetVolume(v / 100)
	return nil
}

func (d *Dispatcher) mute(_ context.Context, _ []string) error {
	if err := d.player.ToggleMute(); err != nil {
		return err
	}
	d.printf("静音: %v\n", d.player.Snapshot().Muted)
	return nil
}

func (d *Dispatcher) repeat(_ context.Context, _ []string) error {
	d.printf("循环: %s\n", d.player.ToggleRepeat())
	return nil
}

func (d *Dispatcher) shuffle(_ context.Context, _ []string) error {
	d.printf("随机: %v\n", d.player.ToggleShuffle())
	return nil
}

func (d *Dispatcher) minimize(_ context.Context, _ []string) error {
	d.printf("迷你播放条: %v\n", d.player.ToggleMinimized())
	return nil
}

func (d *Dispatcher) sidebar(_ context.Context, _ []string) error {
	d.printf("侧边栏: %v\n", d.player.ToggleSidebar())
	return nil
}

func (d *Dispatcher) queue(_ context.Context, _ []string) error {
	snap := d.player.Snapshot()
	if len(snap.Queue) == 0 {
		d.printf("队列为空\n")
		return nil
	}
	for i, t := range snap.Queue {
		marker := "  "
		if i == snap.QueueIndex {
			marker = "▶ "
		}
		d.printf("%s%2d. %s\n", marker, i+1, trackLine(t))
	}
	return nil
}

func (d *Dispatcher) search(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return ErrUsage
	}
	category := library.CategoryAll
	if c, err := library.ParseCategory(args[0]); err == nil && len(args) > 1 {
		category = c
		args = args[1:]
	}

	res, err := d.searcher.Search(ctx, strings.Join(args, " "), category)
	if err != nil {
		return err
	}
	d.results = res.Songs
	if res.Empty() {
		d.printf("没有找到结果\n")
		return nil
	}
	for i, t := range res.Songs {
		d.printf("%2d. %s\n", i+1, trackLine(t))
	}
	for _, a := range res.Artists {
		d.printf("  歌手: %s · %s 关注\n", a.Name, utils.FormatNumber(a.Followers))
	}
	for _, a := range res.Albums {
		d.printf("  专辑: %s - %s (%d)\n", a.Title, a.Artist, a.Year)
	}
	for _, p := range res.Playlists {
		d.printf("  歌单: [%s] %s\n", p.ID, p.Name)
	}
	return nil
}

func (d *Dispatcher) resultAt(args []string) (model.Track, error) {
	if len(args) != 1 {
		return model.Track{}, ErrUsage
	}
	n, err := parseIndex(args[0])
	if err != nil {
		return model.Track{}, err
	}
	if n >= len(d.results) {
		return model.Track{}, fmt.Errorf("%w: 搜索结果只有 %d 首", player.ErrIndexOutOfRange, len(d.results))
	}
	return d.results[n], nil
}

func (d *Dispatcher) pick(_ context.Context, args []string) error {
	t, err := d.resultAt(args)
	if err != nil {
		return err
	}
	return d.player.SetQueue([]model.Track{t}, 0)
}

func (d *Dispatcher) playAll(_ context.Context, _ []string) error {
	if len(d.results) == 0 {
		return player.ErrQueueEmpty
	}
	return d.player.SetQueue(d.results, 0)
}

func (d *Dispatcher) add(_ context.Context, args []string) error {
	t, err := d.resultAt(args)
	if err != nil {
		return err
	}
	d.player.AddToQueue(t)
	d.printf("已加入队列: %s\n", t.Title)
	return nil
}

func (d *Dispatcher) playlist(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	songs, err := d.library.PlaylistSongs(ctx, args[0])
	if err != nil {
		return err
	}
	return d.player.SetQueue(songs, 0)
}

func (d *Dispatcher) catalogPlay(ctx context.Context, args []string) error {
	if d.catalog == nil {
		return fmt.Errorf("catalog %w", ErrNotConfigured)
	}
	if len(args) == 0 || len(args) > 2 {
		return ErrUsage
	}
	id := ""
	if len(args) == 2 {
		id = args[1]
	}
	tracks, err := d.catalog.Queue(ctx, strings.ToLower(args[0]), id)
	if err != nil {
		return err
	}
	logger.Info("[Console] 播放在线内容", logger.String("kind", args[0]), logger.String("id", id), logger.Int("tracks", len(tracks)))
	return d.player.SetQueue(tracks, 0)
}

func (d *Dispatcher) queueStore() (QueueStore, error) {
	if d.queues == nil {
		return nil, fmt.Errorf("saved queues %w", ErrNotConfigured)
	}
	return d.queues, nil
}

func (d *Dispatcher) saveQueue(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	qs, err := d.queueStore()
	if err != nil {
		return err
	}
	snap := d.player.Snapshot()
	if len(snap.Queue) == 0 {
		return player.ErrQueueEmpty
	}
	if err := qs.Save(ctx, args[0], snap.Queue); err != nil {
		return err
	}
	d.printf("已保存 %d 首到 %q\n", len(snap.Queue), args[0])
	return nil
}

func (d *Dispatcher) loadQueue(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	qs, err := d.queueStore()
	if err != nil {
		return err
	}
	tracks, err := qs.Load(ctx, args[0])
	if err != nil {
		return err
	}
	return d.player.SetQueue(tracks, 0)
}

func (d *Dispatcher) listQueues(ctx context.Context, _ []string) error {
	qs, err := d.queueStore()
	if err != nil {
		return err
	}
	names, err := qs.List(ctx)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		d.printf("没有保存的队列\n")
	}
	for _, n := range names {
		d.printf("  %s\n", n)
	}
	return nil
}

func (d *Dispatcher) dropQueue(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return ErrUsage
	}
	qs, err := d.queueStore()
	if err != nil {
		return err
	}
	return qs.Delete(ctx, args[0])
}

// parseIndex converts a 1-based position into a 0-based index.
func parseIndex(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %q", player.ErrIndexOutOfRange, s)
	}
	return n - 1, nil
}

// ParsePosition accepts "m:ss", plain seconds, or a signed offset from current.
func ParsePosition(s string, current time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrUsage
	}
	if s[0] == '+' || s[0] == '-' {
		secs, err := strconv.ParseFloat(s[1:], 64)
		if err != nil {
			return 0, ErrUsage
		}
		if s[0] == '-' {
			secs = -secs
		}
		return utils.SecondsToDuration(current.Seconds() + secs), nil
	}
	if m, sec, ok := strings.Cut(s, ":"); ok {
		mins, err1 := strconv.Atoi(m)
		secs, err2 := strconv.Atoi(sec)
		if err1 != nil || err2 != nil || mins < 0 || secs < 0 || secs >= 60 {
			return 0, ErrUsage
		}
		return utils.SecondsToDuration(float64(mins)*60 + float64(secs)), nil
	}
	secs, err := strconv.ParseFloat(s, 64)
	if err != nil || secs < 0 {
		return 0, ErrUsage
	}
	return utils.SecondsToDuration(secs), nil
}

func trackLine(t model.Track) string {
	return fmt.Sprintf("%s - %s [%s]", utils.TruncateText(t.Title, 40), utils.TruncateText(t.Artist, 30), utils.FormatTime(float64(t.Duration)))
}

func mutedSuffix(muted bool) string {
	if muted {
		return " (静音)"
	}
	return ""
}

// StatusLine renders a one-line summary of a snapshot.
func StatusLine(snap model.PlaybackSnapshot) string {
	if snap.CurrentSong == nil {
		if len(snap.Queue) == 0 {
			return "■ 空闲"
		}
		return fmt.Sprintf("■ 已停止 · 队列 %d 首", len(snap.Queue))
	}
	icon := "❚❚"
	if snap.Playing {
		icon = "▶"
	}
	t := snap.CurrentSong
	line := fmt.Sprintf("%s %s - %s  %s / %s  音量 %d%%%s  循环:%s",
		icon,
		utils.TruncateText(t.Title, 40),
		utils.TruncateText(t.Artist, 30),
		utils.FormatTime(snap.CurrentTime),
		utils.FormatTime(float64(t.Duration)),
		int(snap.Volume*100+0.5),
		mutedSuffix(snap.Muted),
		snap.Repeat)
	if snap.Shuffle {
		line += " 随机"
	}
	if snap.LastError != "" {
		line += "  ! " + snap.LastError
	}
	return line
}
