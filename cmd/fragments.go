package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/global"
	internalApp "github.com/haierkeys/murverse-service/internal/app"
	"github.com/haierkeys/murverse-service/pkg/client"
	"github.com/haierkeys/murverse-service/pkg/fragcache"
	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/search"
	"github.com/haierkeys/murverse-service/pkg/store"
	"github.com/haierkeys/murverse-service/pkg/util"
)

// cacheQuota 本地缓存目录的容量上限
const cacheQuota = 5 << 20

type fragmentFlags struct {
	tags     []string
	excluded []string
	logic    string
	mode     string
	scopes   []string
	timeSpan string
	start    string
	end      string
	notes    []string
	noCache  bool
	dump     bool
}

// openStore 连接远端服务并创建带本地缓存的状态容器
// Endpoint and credentials come from flags or MURVERSE_ENDPOINT,
// MURVERSE_API_KEY, MURVERSE_USERNAME and MURVERSE_PASSWORD.
func openStore(ctx context.Context, v *viper.Viper, noCache bool) (*store.Store, error) {
	endpoint := v.GetString("endpoint")
	if endpoint == "" {
		return nil, errors.New("endpoint is required (--endpoint or MURVERSE_ENDPOINT)")
	}

	opts := []client.Option{client.WithLogger(bootstrapLogger)}
	identity := ""
	switch {
	case v.GetString("api-key") != "":
		opts = append(opts, client.WithAPIKey(v.GetString("api-key")))
		identity = "key:" + v.GetString("api-key")
	case v.GetString("username") != "":
		src := client.NewPasswordTokenSource(ctx, endpoint, v.GetString("username"), v.GetString("password"))
		opts = append(opts, client.WithTokenSource(src))
		identity = "user:" + v.GetString("username")
	default:
		return nil, errors.New("credentials required (MURVERSE_API_KEY or MURVERSE_USERNAME / MURVERSE_PASSWORD)")
	}

	c := client.New(endpoint, opts...)
	sopts := []store.Option{store.WithLogger(bootstrapLogger)}

	if !noCache {
		dir, err := os.UserCacheDir()
		if err != nil {
			dir = os.TempDir()
		}
		backend, err := fragcache.NewFileBackend(filepath.Join(dir, "murverse"), cacheQuota)
		if err != nil {
			bootstrapLogger.Warn("fragment cache disabled", zap.Error(err))
		} else {
			cache := fragcache.New(backend, fragcache.WithLogger(bootstrapLogger))
			// 顺手清掉其他身份留下的过期条目
			if n := cache.Cleanup(); n > 0 {
				bootstrapLogger.Debug("fragment cache expired entries removed", zap.Int("count", n))
			}
			sopts = append(sopts, store.WithCache(cache, fragcache.DefaultTTL))
		}
	}

	uid := util.EncodeMD5(endpoint + "|" + identity)
	return store.New(uid, c.Fragments(), sopts...), nil
}

func printFragments(list []*fragment.Fragment) {
	for _, f := range list {
		line := strings.ReplaceAll(f.Content, "\n", " ")
		if len([]rune(line)) > 72 {
			line = string([]rune(line)[:72]) + "…"
		}
		fmt.Printf("%s  %s  %s", f.ID, f.UpdatedAt.Local().Format(time.DateTime), line)
		if len(f.Tags) > 0 {
			fmt.Printf("  #%s", strings.Join(f.Tags, " #"))
		}
		if len(f.Notes) > 0 {
			fmt.Printf("  (%d notes)", len(f.Notes))
		}
		fmt.Println()
	}
}

func init() {
	v := internalApp.NewEnv()
	flags := new(fragmentFlags)

	fragmentsCommand := &cobra.Command{
		Use:   "fragments",
		Short: "Search and add fragments on a remote Murverse service",
	}
	pf := fragmentsCommand.PersistentFlags()
	pf.String("endpoint", "", "service base url, e.g. http://127.0.0.1:9100")
	pf.String("api-key", "", "bearer token")
	pf.String("username", "", "login username or email")
	pf.String("password", "", "login password")
	pf.BoolVar(&flags.noCache, "no-cache", false, "skip the local fragment cache")
	pf.BoolVar(&flags.dump, "dump", false, "dump raw fragments")
	for _, key := range []string{"endpoint", "api-key", "username", "password"} {
		_ = v.BindPFlag(key, pf.Lookup(key))
	}

	searchCommand := &cobra.Command{
		Use:   "search [query]",
		Short: "Search fragments, e.g. 'hello world' +tag1 -tag2 foo OR bar",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, v, flags.noCache)
			if err != nil {
				return err
			}
			if err := s.Load(ctx); err != nil {
				return err
			}

			q := search.Query{
				Scopes:       search.ParseScopes(flags.scopes...),
				MatchMode:    search.ParseMatchMode(flags.mode),
				TimeRange:    search.ParseTimeRange(flags.timeSpan),
				SelectedTags: search.SplitList(flags.tags...),
				ExcludedTags: search.SplitList(flags.excluded...),
				TagLogic:     search.ParseTagLogic(flags.logic),
			}
			if len(args) > 0 {
				q.Text = args[0]
			}
			if q.Start, err = search.ParseTimeBound(flags.start, time.Local); err != nil {
				return err
			}
			if q.End, err = search.ParseTimeEnd(flags.end, time.Local); err != nil {
				return err
			}
			s.SetFilter(q)

			list := s.Visible()
			if flags.dump {
				global.Dump(list)
			} else {
				printFragments(list)
			}
			// 缓存命中时后台仍在刷新，等它写回缓存
			s.Wait()
			return nil
		},
	}
	sf := searchCommand.Flags()
	sf.StringSliceVarP(&flags.tags, "tag", "t", nil, "selected tags")
	sf.StringSliceVarP(&flags.excluded, "exclude", "x", nil, "excluded tags")
	sf.StringVar(&flags.logic, "logic", "AND", "tag logic AND / OR")
	sf.StringVar(&flags.mode, "mode", "substring", "match mode exact / prefix / substring")
	sf.StringSliceVar(&flags.scopes, "scope", nil, "fragment,note,tag")
	sf.StringVar(&flags.timeSpan, "range", "all", "all / today / yesterday / week / month / custom")
	sf.StringVar(&flags.start, "start", "", "custom range start")
	sf.StringVar(&flags.end, "end", "", "custom range end")

	addCommand := &cobra.Command{
		Use:   "add <content>",
		Short: "Add a fragment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openStore(ctx, v, flags.noCache)
			if err != nil {
				return err
			}
			// 先加载完整集合，保存成功后写回的缓存才不会缺数据
			if err := s.Load(ctx); err != nil {
				return err
			}
			s.Wait()

			in := &fragment.Fragment{Content: args[0], Tags: flags.tags}
			for _, n := range flags.notes {
				in.Notes = append(in.Notes, fragment.Note{Value: n})
			}
			f, res, err := s.AddFragment(ctx, in)
			if err != nil {
				return err
			}
			if !res.OK() {
				return res.Failed[0].Err
			}
			if flags.dump {
				global.Dump(f)
				return nil
			}
			fmt.Println(f.ID)
			return nil
		},
	}
	af := addCommand.Flags()
	af.StringSliceVarP(&flags.tags, "tag", "t", nil, "tags")
	af.StringArrayVarP(&flags.notes, "note", "n", nil, "note text, repeatable")

	fragmentsCommand.AddCommand(searchCommand, addCommand)
	rootCmd.AddCommand(fragmentsCommand)
}
