package web

import "html/template"

var panelTemplate = template.Must(template.New("panel").Parse(panelHTML))

type panelData struct {
	Config interface{}
}

const panelHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>AetherPanel</title>
<style>
  :root { color-scheme: dark; }
  body { font-family: system-ui, sans-serif; background: #1e1f22; color: #dbdee1; margin: 0; }
  main { max-width: 560px; margin: 3rem auto; padding: 0 1rem; }
  h1 { font-size: 1.4rem; }
  form { background: #2b2d31; border-radius: 8px; padding: 1.5rem; }
  label { display: block; margin: 0.9rem 0 0.3rem; font-size: 0.85rem; color: #b5bac1; }
  input[type=text], input[type=color] { width: 100%; box-sizing: border-box; padding: 0.5rem;
    border: 1px solid #1e1f22; border-radius: 4px; background: #1e1f22; color: #dbdee1; }
  button { margin-top: 1.2rem; padding: 0.55rem 1.2rem; border: 0; border-radius: 4px;
    background: {{.Config.EmbedColor}}; color: #fff; cursor: pointer; }
  img.avatar { width: 64px; height: 64px; border-radius: 50%; vertical-align: middle; margin-right: 0.8rem; }
  #status { margin-top: 0.8rem; font-size: 0.85rem; }
</style>
</head>
<body>
<main>
  <h1><img class="avatar" src="/avatar.png" onerror="this.style.display='none'" alt="">{{.Config.BotName}}</h1>
  <form id="config-form">
    <label for="botName">Bot name</label>
    <input type="text" id="botName" name="botName" value="{{.Config.BotName}}" maxlength="32">
    <label for="embedColor">Embed color</label>
    <input type="color" id="embedColor" name="embedColor" value="{{.Config.EmbedColor}}">
    <label for="footerText">Embed footer</label>
    <input type="text" id="footerText" name="footerText" value="{{.Config.FooterText}}" maxlength="128">
    <label for="ticketCategory">Ticket category</label>
    <input type="text" id="ticketCategory" name="ticketCategory" value="{{.Config.TicketCategory}}" maxlength="64">
    <label for="supportRole">Support role</label>
    <input type="text" id="supportRole" name="supportRole" value="{{.Config.SupportRole}}" maxlength="64">
    <label for="avatar">Avatar (PNG, JPEG or WebP, max 5 MB)</label>
    <input type="file" id="avatar" accept="image/png,image/jpeg,image/webp">
    <button type="submit">Save</button>
    <div id="status"></div>
  </form>
</main>
<script>
const form = document.getElementById('config-form');
const status = document.getElementById('status');
form.addEventListener('submit', async (e) => {
  e.preventDefault();
  status.textContent = 'Saving...';
  try {
    const avatar = document.getElementById('avatar').files[0];
    if (avatar) {
      const fd = new FormData();
      fd.append('avatar', avatar);
      const res = await fetch('/api/avatar', { method: 'POST', body: fd });
      if (!res.ok) throw new Error('avatar upload failed');
    }
    const body = {};
    for (const field of ['botName', 'embedColor', 'footerText', 'ticketCategory', 'supportRole']) {
      body[field] = document.getElementById(field).value;
    }
    const res = await fetch('/api/config', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(body),
    });
    if (!res.ok) throw new Error('save failed');
    status.textContent = 'Saved.';
  } catch (err) {
    status.textContent = 'Error: ' + err.message;
  }
});
</script>
</body>
</html>
`
