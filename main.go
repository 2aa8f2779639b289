package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	"github.com/resfetch/resfetch/internal/cache"
	"github.com/resfetch/resfetch/internal/config"
	"github.com/resfetch/resfetch/internal/fetch"
	"github.com/resfetch/resfetch/internal/logging"
	"github.com/resfetch/resfetch/internal/resource"
	"github.com/resfetch/resfetch/internal/server"
	"github.com/resfetch/resfetch/internal/server/routes"
	"github.com/resfetch/resfetch/internal/urltable"
	"github.com/resfetch/resfetch/internal/version"
)

// cliOptions 汇总 CLI 标志解析后的结果，便于在测试中注入。
type cliOptions struct {
	configPath  string
	checkOnly   bool
	showVersion bool
	command     string
	args        []string
}

var (
	stdOut io.Writer = os.Stdout
	stdErr io.Writer = os.Stderr
)

const usageText = `用法: resfetch [--config path] [--check-config] [--version] <command> [args]

命令:
  require <name> [destination]      按 URL 表中的名称获取资源
  hash <hash-url> [destination]     按 hash:<sha1>[:<name>] 获取资源
  url <url>                         下载任意 URL 到缓存目录
  resolve <hash-url>                仅解析 hash 标识符对应的 URL
  serve                             启动 HTTP 服务`

// errUsage 表示命令行参数不合法，对应退出码 2。
var errUsage = errors.New("usage error")

func main() {
	opts, err := parseCLIFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintln(stdErr, err.Error())
		fmt.Fprintln(stdErr, usageText)
		os.Exit(2)
	}
	os.Exit(run(opts))
}

// runtimeDeps 是一次运行所需的全部依赖，启动时构建一次后显式传递。
type runtimeDeps struct {
	cfg     *config.Config
	logger  *logrus.Logger
	table   *urltable.Table
	service *resource.Service
}

// run 根据解析到的 CLI 选项执行业务流程，并返回退出码，方便测试。
func run(opts cliOptions) int {
	if opts.showVersion {
		printVersion()
		return 0
	}
	if !opts.checkOnly {
		if err := validateCommand(opts); err != nil {
			fmt.Fprintln(stdErr, err.Error())
			fmt.Fprintln(stdErr, usageText)
			return 2
		}
	}

	// stdout 只输出结果路径；serve 模式下日志写 stdout。
	console := stdErr
	if opts.command == "serve" {
		console = stdOut
	}

	deps, err := bootstrap(opts.configPath, console)
	if err != nil {
		fmt.Fprintf(stdErr, "初始化失败: %v\n", err)
		return 1
	}

	if opts.checkOnly {
		fields := logging.BaseFields("check_config", opts.configPath)
		for k, v := range deps.cfg.Summary() {
			fields[k] = v
		}
		fields["resources"] = deps.table.Len()
		fields["hash_resources"] = deps.table.HashCount()
		fields["result"] = "ok"
		deps.logger.WithFields(fields).Info("配置校验通过")
		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := dispatch(ctx, deps, opts); err != nil {
		fmt.Fprintf(stdErr, "%s 失败: %v\n", opts.command, err)
		return 1
	}
	return 0
}

// bootstrap 遵循“配置 → 日志 → URL 表 → 缓存目录 → Fetcher → Service”顺序构建依赖。
func bootstrap(configPath string, console io.Writer) (*runtimeDeps, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := logging.InitLogger(cfg.Global, console)
	if err != nil {
		return nil, fmt.Errorf("初始化日志失败: %w", err)
	}

	table, err := urltable.Load(cfg.Global.URLTable)
	if err != nil {
		return nil, fmt.Errorf("加载 URL 表失败: %w", err)
	}

	dir, err := cache.NewDir(cfg.Global.CacheDir)
	if err != nil {
		return nil, fmt.Errorf("初始化缓存目录失败: %w", err)
	}

	fetcher, err := fetch.New(fetch.Options{
		Dir:        dir,
		Downloader: fetch.NewDownloader(cfg.Global),
		Logger:     logger,
		Timeout:    cfg.Global.DownloadTimeout.DurationValue(),
	})
	if err != nil {
		return nil, err
	}

	service, err := resource.NewService(table, fetcher, logger)
	if err != nil {
		return nil, err
	}

	fields := logging.BaseFields("startup", configPath)
	for k, v := range cfg.Summary() {
		fields[k] = v
	}
	fields["resources"] = table.Len()
	fields["version"] = version.Full()
	logger.WithFields(fields).Debug("配置加载完成")

	return &runtimeDeps{cfg: cfg, logger: logger, table: table, service: service}, nil
}

func dispatch(ctx context.Context, deps *runtimeDeps, opts cliOptions) error {
	svc := deps.service
	switch opts.command {
	case "require":
		return printPath(svc.Require(ctx, opts.args[0], optionalArg(opts.args, 1)))
	case "hash":
		return printPath(svc.RequireFromHashURL(ctx, opts.args[0], optionalArg(opts.args, 1)))
	case "url":
		return printPath(svc.FileFromURL(ctx, opts.args[0]))
	case "resolve":
		return printPath(svc.ResolveURL(opts.args[0]))
	case "serve":
		return startHTTPServer(ctx, deps)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, opts.command)
	}
}

// validateCommand 检查命令名与参数个数。
func validateCommand(opts cliOptions) error {
	arity := map[string][2]int{
		"require": {1, 2},
		"hash":    {1, 2},
		"url":     {1, 1},
		"resolve": {1, 1},
		"serve":   {0, 0},
	}
	if opts.command == "" {
		return fmt.Errorf("%w: 缺少命令", errUsage)
	}
	bounds, ok := arity[opts.command]
	if !ok {
		return fmt.Errorf("%w: 未知命令 %q", errUsage, opts.command)
	}
	if n := len(opts.args); n < bounds[0] || n > bounds[1] {
		return fmt.Errorf("%w: %s 需要 %d-%d 个参数，得到 %d", errUsage, opts.command, bounds[0], bounds[1], n)
	}
	return nil
}

// parseCLIFlags 解析 CLI 参数，并结合环境变量计算最终的配置路径。
func parseCLIFlags(args []string) (cliOptions, error) {
	fs := flag.NewFlagSet("resfetch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var (
		configFlag string
		checkOnly  bool
		showVer    bool
	)

	fs.StringVar(&configFlag, "config", "", "配置文件路径（默认 ./config.toml，可被 RESFETCH_CONFIG 覆盖）")
	fs.BoolVar(&checkOnly, "check-config", false, "仅校验配置与 URL 表后退出")
	fs.BoolVar(&showVer, "version", false, "显示版本信息")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, fmt.Errorf("解析参数失败: %w", err)
	}

	path := os.Getenv("RESFETCH_CONFIG")
	if configFlag != "" {
		path = configFlag
	}
	if path == "" {
		path = "config.toml"
	}

	opts := cliOptions{
		configPath:  path,
		checkOnly:   checkOnly,
		showVersion: showVer,
	}
	if rest := fs.Args(); len(rest) > 0 {
		opts.command = rest[0]
		opts.args = rest[1:]
	}
	return opts, nil
}

// startHTTPServer 阻塞直到 ctx 结束（SIGINT/SIGTERM），随后优雅关闭 Fiber。
func startHTTPServer(ctx context.Context, deps *runtimeDeps) error {
	port := deps.cfg.Global.ListenPort
	app, err := server.NewApp(server.AppOptions{
		Logger:     deps.logger,
		Resources:  deps.service,
		ListenPort: port,
	})
	if err != nil {
		return err
	}
	routes.RegisterDiagnosticRoutes(app, deps.service)

	deps.logger.WithFields(logrus.Fields{
		"action": "listen",
		"port":   port,
	}).Info("Fiber 服务启动")

	err = app.Listen(fmt.Sprintf(":%d", port), fiber.ListenConfig{
		GracefulContext:       ctx,
		DisableStartupMessage: true,
	})
	deps.logger.WithFields(logrus.Fields{
		"action": "shutdown",
		"port":   port,
	}).Info("Fiber 服务已停止")
	return err
}

func printPath(path string, err error) error {
	if err != nil {
		return err
	}
	fmt.Fprintln(stdOut, path)
	return nil
}

func optionalArg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}
