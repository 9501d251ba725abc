//go:build e2e

package e2e

// snakePage is a minimal stand-in for snake.html. It honours the same
// in-page contract (button labels, element ids, gameInstance globals) and
// pairs the two players through the relay's /events and /action endpoints.
// Appending ?unlocked makes the guest's roll control ignore the turn.
const snakePage = `<!DOCTYPE html>
<html>
<head>
    <title>Snake Multiplayer</title>
    <style>
        body { font-family: sans-serif; margin: 40px; }
        .hidden { display: none; }
        button { font-size: 16px; padding: 8px 16px; margin: 4px; }
    </style>
</head>
<body>
    <h1>Snakes &amp; Ladders</h1>
    <div id="menu">
        <button onclick="hostGame()">Host Game</button>
        <button onclick="showJoin()">Join Game</button>
    </div>
    <div id="hostPanel" class="hidden">
        <p>Room code: <span id="roomCodeDisplay"></span></p>
        <p id="hostStatus">Waiting for player...</p>
        <button id="startBtn" class="hidden" onclick="startMultiplayer()">Start Multiplayer</button>
    </div>
    <div id="joinPanel" class="hidden">
        <input id="roomInput" placeholder="Room code">
        <button onclick="connect()">Connect</button>
        <p id="joinStatus"></p>
    </div>
    <div id="board" class="hidden">
        <p id="turnInfo"></p>
        <button id="rollBtn" onclick="rollDice()">ROLL DICE</button>
        <p id="diceResult"></p>
    </div>
<script>
let room = null;
let role = null;
const unlocked = location.search.includes('unlocked');
const rollAnimation = 1000;

function $(id) { return document.getElementById(id); }
function show(id) { $(id).classList.remove('hidden'); }
function hide(id) { $(id).classList.add('hidden'); }

function send(payload) {
    payload.from = role;
    return fetch('/action', {
        method: 'POST',
        headers: { 'Content-Type': 'application/json' },
        body: JSON.stringify({ room: room, payload: payload })
    });
}

function subscribe(onOpen) {
    const source = new EventSource('/events?room=' + encodeURIComponent(room));
    source.onopen = onOpen;
    source.onmessage = (e) => handle(JSON.parse(e.data));
}

function hostGame() {
    role = 'host';
    room = Math.random().toString(36).slice(2, 8).toUpperCase().padEnd(6, 'X');
    subscribe(() => {
        console.log('Hosting room', room);
        hide('menu');
        $('roomCodeDisplay').textContent = room;
        show('hostPanel');
    });
}

function showJoin() {
    hide('menu');
    show('joinPanel');
}

function connect() {
    role = 'guest';
    room = $('roomInput').value.trim();
    subscribe(() => {
        console.log('Joining room', room);
        send({ type: 'join' });
    });
}

function handle(msg) {
    if (msg.from === role) return;
    if (role === 'host' && msg.type === 'join') {
        $('hostStatus').textContent = 'Player 2 joined!';
        show('startBtn');
        send({ type: 'welcome' });
    } else if (role === 'guest' && msg.type === 'welcome') {
        $('joinStatus').textContent = 'Connected! Waiting for Host...';
    } else if (role === 'guest' && msg.type === 'start') {
        startGame(1);
    } else if (msg.type === 'roll') {
        // The dice animation runs off-DOM; the result lands when it ends.
        setTimeout(() => {
            gameInstance.turnIndex = msg.turnIndex;
            $('diceResult').textContent = 'Opponent rolled ' + msg.value;
            render();
        }, rollAnimation);
    }
}

function startMultiplayer() {
    startGame(0);
    send({ type: 'start' });
}

function startGame(playerId) {
    window.gameInstance = { myPlayerId: playerId, turnIndex: 0, positions: [0, 0] };
    console.log('Game started as player', playerId);
    hide('hostPanel');
    hide('joinPanel');
    show('board');
    render();
}

function myTurn() {
    return unlocked || gameInstance.turnIndex === gameInstance.myPlayerId;
}

function render() {
    const btn = $('rollBtn');
    btn.textContent = myTurn() ? 'ROLL DICE' : 'WAITING...';
    btn.disabled = !myTurn();
    $('turnInfo').textContent = 'Player ' + (gameInstance.turnIndex + 1) + ' to move';
}

function rollDice() {
    if (!myTurn()) return;
    const value = 1 + Math.floor(Math.random() * 6);
    const me = gameInstance.myPlayerId;
    gameInstance.positions[me] += value;
    gameInstance.turnIndex = 1 - gameInstance.turnIndex;
    $('diceResult').textContent = 'You rolled ' + value;
    render();
    send({ type: 'roll', value: value, turnIndex: gameInstance.turnIndex });
}
</script>
</body>
</html>
`

// buttonsPage exposes the game's button labels in the shapes real pages use:
// a hidden duplicate ahead of the live control, a longer label sharing a
// prefix, decorated text, and non-button elements carrying the button role.
// Every activation is appended to window.clicks.
const buttonsPage = `<!DOCTYPE html>
<html>
<head><title>Buttons</title></head>
<body>
    <div style="display: none">
        <button onclick="hit('hidden connect')">Connect</button>
        <button onclick="hit('hidden roll')">ROLL DICE</button>
    </div>
    <button onclick="hit('connect later')">Connect later</button>
    <button onclick="hit('connect')">Connect</button>
    <button onclick="hit('roll')">🎲 ROLL DICE</button>
    <div role="button" onclick="hit('host')" style="display: inline-block; padding: 4px">Host Game</div>
    <input type="submit" value="Join Game" onclick="hit('join')">
    <button aria-label="Start Multiplayer" onclick="hit('start')">&#9654;</button>
<script>
window.clicks = [];
function hit(name) { clicks.push(name); }
</script>
</body>
</html>
`
