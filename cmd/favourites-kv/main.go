package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"counties/internal/country"
	"counties/internal/favourites"
	"counties/internal/utils"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

func printHelp() {
	fmt.Println("commands:")
	fmt.Println("  list")
	fmt.Println("  add <county name or id>")
	fmt.Println("  del <county name or id>")
	fmt.Println("  find <text>")
	fmt.Println("  sync")
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

// lookup：先按 ID，再按名称（名称可含空格）
func lookup(c *country.Country, arg string) (country.County, error) {
	if cty, ok := c.CountyByID(arg); ok {
		return cty, nil
	}
	return c.Lookup(arg)
}

// 文档注释：收藏键值维护工具
// 背景：直接读写云端存储中的 FavouriteCounties，写入会像其他设备一样通知正在运行的服务。
// 约束：不传 --env 时交互输入 Redis 连接参数；命令参数为县名或 ID。
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
	var rdb *redis.Client
	if envFile != "" {
		_ = godotenv.Load(envFile)
		rdb = utils.OpenRedisFromEnv()
	} else {
		r := bufio.NewReader(os.Stdin)
		fmt.Println("输入 Redis 连接参数，回车使用默认值")
		host := prompt(r, "REDIS_HOST", "127.0.0.1")
		port := prompt(r, "REDIS_PORT", "6379")
		pass := prompt(r, "REDIS_PASS", "")
		db, _ := strconv.Atoi(prompt(r, "REDIS_DB", "0"))
		rdb = utils.OpenRedis(host+":"+port, pass, db)
	}
	if rdb == nil {
		fmt.Println("redis disabled")
		os.Exit(1)
	}
	defer rdb.Close()
	ctx := context.Background()
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := rdb.Ping(pctx).Err()
	cancel()
	if err != nil {
		fmt.Println("redis error:", err)
		os.Exit(1)
	}
	uk := country.UnitedKingdom()
	fav := favourites.New(uk, favourites.NewRedisStore(rdb, utils.EnvString("FAVOURITES_KEY_PREFIX", favourites.DefaultPrefix)))
	fmt.Println("favourites kv cli ready")
	printHelp()
	in := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !in.Scan() {
			break
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		cmd, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)
		switch strings.ToLower(cmd) {
		case "exit", "quit":
			return
		case "help":
			printHelp()
		case "list":
			list := fav.Counties(ctx)
			if len(list) == 0 {
				fmt.Println("none")
			}
			for _, c := range list {
				fmt.Printf("%s (%s) | %s\n", c.Name, c.ID, c.PopulationDescription())
			}
		case "add", "del":
			if arg == "" {
				fmt.Printf("usage: %s <county name or id>\n", cmd)
				continue
			}
			cty, err := lookup(uk, arg)
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			var changed bool
			if strings.ToLower(cmd) == "add" {
				changed, err = fav.Add(ctx, cty)
			} else {
				changed, err = fav.Remove(ctx, cty)
			}
			switch {
			case err != nil:
				fmt.Println("error:", err)
			case changed:
				fmt.Println("ok")
			default:
				fmt.Println("unchanged")
			}
		case "find":
			needle := strings.ToLower(arg)
			for _, c := range uk.AllCounties() {
				if strings.Contains(strings.ToLower(c.Name), needle) {
					fmt.Printf("%s (%s)\n", c.Name, c.ID)
				}
			}
		case "sync":
			if err := fav.Synchronise(ctx); err != nil {
				fmt.Println("error:", err)
			} else {
				fmt.Println("ok")
			}
		default:
			fmt.Println("unknown command")
		}
	}
}
