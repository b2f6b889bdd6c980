package server

// indexHTML is the editing page. Double-click adds a node, drag moves it,
// right-click removes it and "e" prompts for an edge.
const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>nodegraph</title>
<style>
  body { margin: 0; font-family: sans-serif; }
  #canvas { display: inline-block; border: 1px solid #ccc; user-select: none; }
  #status { padding: 4px 8px; color: #666; font-size: 12px; }
</style>
</head>
<body>
<div id="canvas"></div>
<div id="status">connecting</div>
<script>
const canvas = document.getElementById("canvas");
const status = document.getElementById("status");
const ws = new WebSocket((location.protocol === "https:" ? "wss://" : "ws://") + location.host + "/ws");
let frame = 0;

function send(type, ev, extra) {
  const r = canvas.getBoundingClientRect();
  const cmd = Object.assign({type: type}, extra || {});
  if (ev) { cmd.x = ev.clientX - r.left; cmd.y = ev.clientY - r.top; }
  ws.send(JSON.stringify(cmd));
}

ws.onopen = () => { status.textContent = "connected"; };
ws.onclose = () => { status.textContent = "disconnected"; };
ws.onmessage = (e) => {
  const msg = JSON.parse(e.data);
  if (msg.type === "error") { status.textContent = msg.error; return; }
  if (msg.frame < frame) { return; }
  frame = msg.frame;
  canvas.innerHTML = msg.svg;
  status.textContent = "frame " + frame;
};

canvas.addEventListener("dblclick", (ev) => send("dblclick", ev));
canvas.addEventListener("mousedown", (ev) => { if (ev.button === 0) send("press", ev); });
canvas.addEventListener("mousemove", (ev) => { if (ev.buttons & 1) send("move", ev); });
canvas.addEventListener("mouseup", (ev) => send("release", ev));
canvas.addEventListener("mouseleave", () => send("cancel"));
canvas.addEventListener("contextmenu", (ev) => { ev.preventDefault(); send("remove", ev); });
document.addEventListener("keydown", (ev) => {
  if (ev.key !== "e" && ev.key !== "x") return;
  const from = prompt("from label");
  const to = from && prompt("to label");
  if (from && to) send(ev.key === "e" ? "connect" : "disconnect", null, {from: from, to: to});
});
</script>
</body>
</html>
`
