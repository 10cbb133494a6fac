package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/config"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/logging"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/chat"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/model/persona"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/ai"
	"github.com/utkarshbhai007/resume-ripple-portfolio/internal/service/widget"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[WARN] 无法加载 .env，改用系统环境变量: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	personaID := flag.String("persona", cfg.Persona.DefaultID, "persona ID")
	message := flag.String("message", "", "只发送一条消息并退出")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	logCfg := config.LogConfig{Level: "warn", Format: "console"}
	if *verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		log.Fatalf("日志初始化失败: %v", err)
	}
	defer logger.Sync()

	store, err := persona.Open(cfg.Persona.File, cfg.Persona.DefaultID)
	if err != nil {
		log.Fatalf("persona 加载失败: %v", err)
	}
	p, ok := store.FindByID(*personaID)
	if !ok {
		log.Fatalf("persona %q 不存在", *personaID)
	}

	ctx := context.Background()
	client, err := ai.NewClient(ctx, cfg.Assistant, p, ai.EnvCredential(config.EnvAssistantAPIKey), logger)
	if err != nil {
		log.Fatalf("创建助手客户端失败: %v", err)
	}

	w := widget.New("cli", p, client, logger)

	in := io.Reader(os.Stdin)
	if *message != "" {
		in = strings.NewReader(*message + "\n")
	}
	if err := run(ctx, w, in, os.Stdout, *message == ""); err != nil {
		logger.Fatal("chat session failed", zap.Error(err))
	}
}

// run 逐行读取输入并打印回复，遇到 /quit 或 EOF 结束
func run(ctx context.Context, w *widget.Widget, in io.Reader, out io.Writer, interactive bool) error {
	p := w.Persona()
	if interactive {
		fmt.Fprintf(out, "%s: %s\n", p.DisplayName(), w.Transcript()[0].Content)
		fmt.Fprintln(out, "输入 /history 查看对话，/quit 退出")
	}

	scanner := bufio.NewScanner(in)
	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			return scanner.Err()
		}

		line := scanner.Text()
		switch strings.TrimSpace(line) {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/history":
			printHistory(out, p, w.Transcript())
			continue
		}

		outcome, err := w.Submit(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
			continue
		}
		if outcome.Fallback {
			n := widget.ConnectionErrorNotification
			fmt.Fprintf(out, "! %s: %s\n", n.Title, n.Description)
		}
		fmt.Fprintf(out, "%s: %s\n", p.DisplayName(), outcome.Reply.Content)
	}
}

func printHistory(out io.Writer, p persona.Persona, messages []chat.Message) {
	for _, m := range messages {
		speaker := "you"
		if m.Role == chat.RoleAssistant {
			speaker = p.DisplayName()
		}
		fmt.Fprintf(out, "[%s] %s\n", speaker, m.Content)
	}
}
