package rest

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/usecase"
)

type pageTemplate struct {
	*template.Template
}

func (that pageTemplate) render(data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := that.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", that.Name(), err)
	}

	return buf.Bytes(), nil
}

type templates struct {
	login pageTemplate
	game  pageTemplate
}

func loadTemplates() *templates {
	base := template.Must(template.New("base").Parse(baseTemplate))

	return &templates{
		login: pageTemplate{template.Must(template.Must(base.Clone()).New("content").Parse(loginTemplate))},
		game:  pageTemplate{template.Must(template.Must(base.Clone()).New("content").Parse(gameTemplate))},
	}
}

type cellView struct {
	Index int
	Mark  entity.Cell
}

type moveView struct {
	Step    int
	Label   string
	Current bool
}

type gamePage struct {
	Player     string
	Status     string
	Rows       [][]cellView
	Moves      []moveView
	HighScores []entity.ScoreEntry
}

func newGamePage(view *usecase.GameView) gamePage {
	page := gamePage{
		Player:     view.Player.DisplayName(),
		Status:     statusLine(view),
		HighScores: view.HighScores,
	}

	for row := 0; row < 3; row++ {
		cells := make([]cellView, 0, 3)
		for col := 0; col < 3; col++ {
			i := row*3 + col
			cells = append(cells, cellView{Index: i, Mark: view.Board[i]})
		}
		page.Rows = append(page.Rows, cells)
	}

	for step := 0; step < view.Steps; step++ {
		label := "Go to game start"
		if step > 0 {
			label = fmt.Sprintf("Go to move #%d", step)
		}
		page.Moves = append(page.Moves, moveView{Step: step, Label: label, Current: step == view.Step})
	}

	return page
}

func statusLine(view *usecase.GameView) string {
	switch view.Status {
	case tictactoe.StatusWon:
		return "Winner: " + string(view.Winner)
	case tictactoe.StatusDraw:
		return "Draw"
	default:
		return "Next player: " + string(view.Next)
	}
}

const baseTemplate = `<!doctype html>
<html>
<head>
<meta charset="utf-8"/>
<title>Tic-Tac-Toe</title>
<style>
.board-row { display: flex; }
.square { width: 48px; height: 48px; font-size: 24px; font-weight: bold; }
.current { font-weight: bold; }
</style>
</head>
<body>{{template "content" .}}</body>
</html>`

const loginTemplate = `<h1>Tic-Tac-Toe</h1>
<a href="/auth/facebook/login">Log in with Facebook</a>`

const gameTemplate = `<div class="game">
  <div class="header">
    <span>Playing as {{.Player}}</span>
    <form action="/auth/logout" method="post"><button type="submit">Log out</button></form>
  </div>
  <div class="game-board">
    <div class="status">{{.Status}}</div>
    {{range .Rows}}
    <div class="board-row">
      {{range .}}
      <form action="/game/move" method="post">
        <input type="hidden" name="cell" value="{{.Index}}">
        <button class="square" type="submit">{{.Mark}}</button>
      </form>
      {{end}}
    </div>
    {{end}}
    <form action="/game/new" method="post"><button type="submit">New game</button></form>
  </div>
  <div class="game-info">
    <ol>
      {{range .Moves}}
      <li>
        <form action="/game/jump" method="post">
          <input type="hidden" name="step" value="{{.Step}}">
          <button type="submit"{{if .Current}} class="current"{{end}}>{{.Label}}</button>
        </form>
      </li>
      {{end}}
    </ol>
  </div>
  <div class="high-scores">
    <h2>Top players</h2>
    <ol>
      {{range .HighScores}}
      <li>{{.Player}}: {{.Score}}</li>
      {{else}}
      <li>No scores yet</li>
      {{end}}
    </ol>
  </div>
</div>`
