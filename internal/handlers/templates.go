package handlers

import "html/template"

// The platform's own pages are deliberately small; the interesting surface of
// this service is the relay API and the bot. Templates are kept inline.
var tmpl = template.Must(template.New("").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en"><head><meta charset="utf-8"><title>{{.Title}} — Electro Guidebook</title></head><body>
<h1>{{.Title}}</h1>
{{range .Errors}}<p class="error">{{.}}</p>{{end}}{{end}}

{{define "foot"}}</body></html>{{end}}

{{define "login"}}{{template "head" .}}
<form method="post" action="/login">
  <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Log in</button>
</form>
<p><a href="/register">Create an account</a></p>
{{template "foot" .}}{{end}}

{{define "register"}}{{template "head" .}}
<form method="post" action="/register">
  <label>Login <input name="login" value="{{.Login}}" required></label>
  <label>Email <input type="email" name="email" value="{{.Email}}" required></label>
  <label>Password <input type="password" name="password" required></label>
  <button type="submit">Register</button>
</form>
<p><a href="/login">Already have an account?</a></p>
{{template "foot" .}}{{end}}

{{define "profile"}}{{template "head" .}}
<p>Logged in as <b>{{.User.Login}}</b> ({{.User.Email}}) — <a href="/logout">log out</a></p>

<h2>Telegram notifications</h2>
{{if .Telegram}}
<p>Connected to Telegram account <b>@{{.Telegram.Username}}</b>.</p>
<p><a href="/disconnect-telegram">Disconnect Telegram</a></p>
{{else}}
<p>Not connected. Send the bot these two lines, or scan the code below:</p>
<pre>{{.User.Email}}
{{.Code}}</pre>
<p><img src="/qr/linking.png" alt="linking payload" width="256" height="256"></p>
{{end}}
{{template "foot" .}}{{end}}
`))
