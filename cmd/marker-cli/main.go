package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"dotglobe/internal/marker"
	"dotglobe/internal/migrate"
	"dotglobe/internal/store"
	"dotglobe/internal/utils"

	"github.com/joho/godotenv"
)

// parseMarker 解析 "<lon> <lat> <name...>"；名称可含空格（如 "Porto, PT"）
func parseMarker(args []string, featured bool) (marker.Marker, error) {
	if len(args) < 3 {
		return marker.Marker{}, fmt.Errorf("need <lon> <lat> <name>")
	}
	lon, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return marker.Marker{}, fmt.Errorf("bad lon %q", args[0])
	}
	lat, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return marker.Marker{}, fmt.Errorf("bad lat %q", args[1])
	}
	m := marker.Marker{Name: strings.Join(args[2:], " "), Lon: lon, Lat: lat, Featured: featured}
	return m, m.Validate()
}

func formatMarker(m marker.Marker) string {
	star := " "
	if m.Featured {
		star = "*"
	}
	return fmt.Sprintf("%s %-24s %9.4f %8.4f", star, m.Name, m.Lon, m.Lat)
}

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  add  <lon> <lat> <name...>")
	fmt.Println("  star <lon> <lat> <name...>   (featured)")
	fmt.Println("  del  <name...>")
	fmt.Println("  get  <name...>")
	fmt.Println("  list")
	fmt.Println("  stats")
	fmt.Println("  seed")
	fmt.Println("  help")
	fmt.Println("  exit")
}

func prompt(r *bufio.Reader, label, def string) string {
	if def != "" {
		fmt.Printf("%s [%s]: ", label, def)
	} else {
		fmt.Printf("%s: ", label)
	}
	s, _ := r.ReadString('\n')
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	return s
}

func main() {
	var envFile string
	for i := 1; i < len(os.Args); i++ {
		if os.Args[i] == "--env" && i+1 < len(os.Args) {
			envFile = os.Args[i+1]
			i++
		} else if strings.HasSuffix(os.Args[i], ".env") {
			envFile = os.Args[i]
		}
	}
	var st *store.Store
	var err error
	if envFile != "" {
		_ = godotenv.Load(envFile)
		db, e := utils.OpenPostgresFromEnv()
		if e == nil {
			st = store.AttachDB(db)
		}
		err = e
	} else {
		r := bufio.NewReader(os.Stdin)
		fmt.Println("输入数据库连接参数，回车使用默认值")
		host := prompt(r, "PG_HOST", "127.0.0.1")
		port := prompt(r, "PG_PORT", "5432")
		user := prompt(r, "PG_USER", "postgres")
		pass := prompt(r, "PG_PASSWORD", "")
		name := prompt(r, "PG_DB", "dotglobe")
		ssl := prompt(r, "PG_SSLMODE", "disable")
		p := utils.PGParams{Host: host, Port: port, User: user, Password: pass, DB: name, SSLMode: ssl}
		st, err = store.Open(p.DSN())
	}
	if err != nil {
		fmt.Println("db error:", err)
		os.Exit(1)
	}
	if err := migrate.EnsureSchema(st.DB()); err != nil {
		fmt.Println("schema error:", err)
		os.Exit(1)
	}
	defer st.Close()
	fmt.Println("marker cli ready")
	printHelp()
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		parts := strings.Fields(in.Text())
		if len(parts) == 0 {
			continue
		}
		if !run(st, strings.ToLower(parts[0]), parts[1:]) {
			return
		}
	}
}

// run 执行一条命令；返回 false 表示退出
func run(st *store.Store, cmd string, args []string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	switch cmd {
	case "exit", "quit":
		return false
	case "help":
		printHelp()
	case "add", "set", "star":
		m, err := parseMarker(args, cmd == "star")
		if err != nil {
			fmt.Println("usage:", cmd, "<lon> <lat> <name...>:", err)
			return true
		}
		if err := st.UpsertMarker(ctx, m); err != nil {
			fmt.Println("error:", err)
		} else {
			fmt.Println("ok")
		}
	case "del":
		if len(args) == 0 {
			fmt.Println("usage: del <name...>")
			return true
		}
		err := st.DeleteMarker(ctx, strings.Join(args, " "))
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Println("none")
		case err != nil:
			fmt.Println("error:", err)
		default:
			fmt.Println("ok")
		}
	case "get":
		if len(args) == 0 {
			fmt.Println("usage: get <name...>")
			return true
		}
		m, err := st.GetMarker(ctx, strings.Join(args, " "))
		switch {
		case errors.Is(err, store.ErrNotFound):
			fmt.Println("none")
		case err != nil:
			fmt.Println("error:", err)
		default:
			fmt.Println(formatMarker(*m))
		}
	case "list":
		ms, err := st.ListMarkers(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return true
		}
		if len(ms) == 0 {
			fmt.Println("none")
		}
		for _, m := range ms {
			fmt.Println(formatMarker(m))
		}
	case "stats":
		t, err := st.GetTotals(ctx)
		if err != nil {
			fmt.Println("error:", err)
			return true
		}
		fmt.Printf("sessions %d (today %d) | renders %d (today %d) | visitors %d (today %d)\n",
			t.Sessions, t.TodaySessions, t.Renders, t.TodayRenders, t.Visitors, t.TodayVisitors)
	case "seed":
		n, err := migrate.SeedMarkers(ctx, st.DB())
		if err != nil {
			fmt.Println("error:", err)
		} else {
			fmt.Println("seeded", n)
		}
	default:
		fmt.Println("unknown command")
	}
	return true
}
