package rod

// Pages served to the browser tests.
const (
	FormHTML = `<!DOCTYPE html>
<html>
<body>
	<form id="testForm" onsubmit="return false">
		<input id="email" type="text" name="email" value="prefilled" />
		<select id="contact">
			<option value="no">希望しない</option>
			<option value="email">メールでのご連絡</option>
			<option value="tel">電話でのご連絡</option>
		</select>
		<textarea id="note"></textarea>
		<button id="submit" type="button">送信</button>
	</form>
	<ul id="plans"><li>朝食バイキング</li><li>お得な観光プラン</li></ul>
	<div id="result"></div>
	<script>
		document.getElementById('submit').addEventListener('click', function() {
			var email = document.getElementById('email').value;
			var contact = document.getElementById('contact').value;
			document.getElementById('result').textContent = email + '/' + contact;
		});
	</script>
</body>
</html>`

	DialogHTML = `<!DOCTYPE html>
<html>
<body>
	<button id="delete">退会する</button>
	<div id="result"></div>
	<script>
		document.getElementById('delete').addEventListener('click', function() {
			var ok = confirm('退会すると全ての情報が削除されます。よろしいですか？');
			document.getElementById('result').textContent = ok ? 'deleted' : 'kept';
		});
	</script>
</body>
</html>`

	TabsHTML = `<!DOCTYPE html>
<html>
<body>
	<a id="open" href="/popup" target="_blank">open</a>
</body>
</html>`

	PopupHTML = `<!DOCTYPE html>
<html>
<body>
	<h1 id="title">宿泊予約</h1>
</body>
</html>`

	ConsoleErrorHTML = `<!DOCTYPE html>
<html>
<body>
	<h1>ok</h1>
	<script>console.error('broken widget'); missingFunction();</script>
</body>
</html>`
)
